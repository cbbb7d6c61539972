package codescan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// goExtractor extracts declarations, imports, and call sites from Go files.
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, source []byte, report *FileReport) {
	cursor := root.Walk()
	defer cursor.Close()

	walkTree(cursor, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "function_declaration":
			e.addNamed(node, source, SymbolKindFunction, report)

		case "method_declaration":
			e.addNamed(node, source, SymbolKindMethod, report)

		case "type_declaration":
			e.addTypeDeclaration(node, source, report)

		case "import_spec":
			if imp := e.importPath(node, source); imp != "" {
				report.Imports = append(report.Imports, imp)
			}

		case "call_expression":
			if callee := e.callee(node, source); callee != "" {
				report.Calls = append(report.Calls, callee)
			}

		case "go_statement":
			// Record goroutine launches as a synthetic call site so probes
			// can detect concurrent fan-out without re-walking the AST.
			report.Calls = append(report.Calls, "go")
		}
	})
}

func (e *goExtractor) addNamed(node *tree_sitter.Node, source []byte, kind SymbolKind, report *FileReport) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(source)
	start, end := lineSpan(node)
	report.Symbols = append(report.Symbols, Symbol{
		Name:      name,
		Kind:      kind,
		Exported:  isGoExported(name),
		StartLine: start,
		EndLine:   end,
	})
}

// addTypeDeclaration handles the type_spec children of a type_declaration,
// distinguishing interfaces from other type definitions.
func (e *goExtractor) addTypeDeclaration(node *tree_sitter.Node, source []byte, report *FileReport) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "type_spec" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Utf8Text(source)

		kind := SymbolKindType
		if typeNode := child.ChildByFieldName("type"); typeNode != nil && typeNode.Kind() == "interface_type" {
			kind = SymbolKindInterface
		}

		start, end := lineSpan(child)
		report.Symbols = append(report.Symbols, Symbol{
			Name:      name,
			Kind:      kind,
			Exported:  isGoExported(name),
			StartLine: start,
			EndLine:   end,
		})
	}
}

func (e *goExtractor) importPath(node *tree_sitter.Node, source []byte) string {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "interpreted_string_literal" {
				pathNode = child
				break
			}
		}
	}
	if pathNode == nil {
		return ""
	}
	return strings.Trim(pathNode.Utf8Text(source), "\"")
}

func (e *goExtractor) callee(node *tree_sitter.Node, source []byte) string {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return ""
	}
	// Best-effort: only simple identifiers and selector expressions.
	switch fnNode.Kind() {
	case "identifier", "selector_expression":
		return fnNode.Utf8Text(source)
	}
	return ""
}

// isGoExported returns true if the first rune of name is an uppercase letter.
func isGoExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
