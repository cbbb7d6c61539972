package codescan

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rsExtractor extracts declarations, imports, and call sites from Rust files.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, source []byte, report *FileReport) {
	cursor := root.Walk()
	defer cursor.Close()

	walkTree(cursor, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "function_item":
			e.addNamed(node, source, SymbolKindFunction, report)

		case "struct_item":
			e.addNamed(node, source, SymbolKindType, report)

		case "enum_item":
			e.addNamed(node, source, SymbolKindEnum, report)

		case "trait_item":
			e.addNamed(node, source, SymbolKindTrait, report)

		case "type_item":
			e.addNamed(node, source, SymbolKindType, report)

		case "use_declaration":
			if arg := node.ChildByFieldName("argument"); arg != nil {
				if imp := arg.Utf8Text(source); imp != "" {
					report.Imports = append(report.Imports, imp)
				}
			}

		case "call_expression":
			if callee := e.callee(node, source); callee != "" {
				report.Calls = append(report.Calls, callee)
			}
		}
	})
}

func (e *rsExtractor) addNamed(node *tree_sitter.Node, source []byte, kind SymbolKind, report *FileReport) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	start, end := lineSpan(node)
	report.Symbols = append(report.Symbols, Symbol{
		Name:      nameNode.Utf8Text(source),
		Kind:      kind,
		Exported:  true, // pub tracking is not needed by any probe
		StartLine: start,
		EndLine:   end,
	})
}

func (e *rsExtractor) callee(node *tree_sitter.Node, source []byte) string {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return ""
	}
	switch fnNode.Kind() {
	case "identifier", "scoped_identifier", "field_expression":
		return fnNode.Utf8Text(source)
	}
	return ""
}
