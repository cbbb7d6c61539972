package codescan

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// pyExtractor extracts declarations, imports, and call sites from Python files.
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, source []byte, report *FileReport) {
	cursor := root.Walk()
	defer cursor.Close()

	walkTree(cursor, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "function_definition":
			e.addNamed(node, source, SymbolKindFunction, report)

		case "class_definition":
			e.addNamed(node, source, SymbolKindClass, report)

		case "import_statement":
			for i := uint(0); i < node.ChildCount(); i++ {
				child := node.Child(i)
				if child != nil && child.Kind() == "dotted_name" {
					if name := child.Utf8Text(source); name != "" {
						report.Imports = append(report.Imports, name)
					}
				}
			}

		case "import_from_statement":
			if imp := e.fromImport(node, source); imp != "" {
				report.Imports = append(report.Imports, imp)
			}

		case "call":
			if callee := e.callee(node, source); callee != "" {
				report.Calls = append(report.Calls, callee)
			}
		}
	})
}

func (e *pyExtractor) addNamed(node *tree_sitter.Node, source []byte, kind SymbolKind, report *FileReport) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(source)
	start, end := lineSpan(node)
	report.Symbols = append(report.Symbols, Symbol{
		Name:      name,
		Kind:      kind,
		Exported:  isPyExported(name),
		StartLine: start,
		EndLine:   end,
	})
}

func (e *pyExtractor) fromImport(node *tree_sitter.Node, source []byte) string {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "dotted_name" {
				moduleNode = child
				break
			}
		}
	}
	if moduleNode == nil {
		return ""
	}
	return moduleNode.Utf8Text(source)
}

func (e *pyExtractor) callee(node *tree_sitter.Node, source []byte) string {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return ""
	}
	switch fnNode.Kind() {
	case "identifier", "attribute":
		return fnNode.Utf8Text(source)
	}
	return ""
}

// isPyExported returns true if the name does not start with an underscore.
func isPyExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}
