package codescan

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tsExtractor extracts declarations, imports, and call sites from
// TypeScript files.
type tsExtractor struct{}

func (e *tsExtractor) Extract(root *tree_sitter.Node, source []byte, report *FileReport) {
	cursor := root.Walk()
	defer cursor.Close()

	walkTree(cursor, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "function_declaration":
			e.addNamed(node, source, SymbolKindFunction, report)

		case "class_declaration":
			e.addNamed(node, source, SymbolKindClass, report)

		case "interface_declaration":
			e.addNamed(node, source, SymbolKindInterface, report)

		case "type_alias_declaration":
			e.addNamed(node, source, SymbolKindType, report)

		case "enum_declaration":
			e.addNamed(node, source, SymbolKindEnum, report)

		case "import_statement":
			if imp := e.importSource(node, source); imp != "" {
				report.Imports = append(report.Imports, imp)
			}

		case "call_expression":
			if callee := e.callee(node, source); callee != "" {
				report.Calls = append(report.Calls, callee)
			}
		}
	})
}

func (e *tsExtractor) addNamed(node *tree_sitter.Node, source []byte, kind SymbolKind, report *FileReport) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	start, end := lineSpan(node)
	report.Symbols = append(report.Symbols, Symbol{
		Name:      nameNode.Utf8Text(source),
		Kind:      kind,
		Exported:  true, // visibility tracking is not needed by any probe
		StartLine: start,
		EndLine:   end,
	})
}

func (e *tsExtractor) importSource(node *tree_sitter.Node, source []byte) string {
	srcNode := node.ChildByFieldName("source")
	if srcNode == nil {
		return ""
	}
	return strings.Trim(srcNode.Utf8Text(source), `"'`)
}

func (e *tsExtractor) callee(node *tree_sitter.Node, source []byte) string {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return ""
	}
	switch fnNode.Kind() {
	case "identifier", "member_expression":
		return fnNode.Utf8Text(source)
	}
	return ""
}
