// Package codescan extracts structural facts from source trees: symbols,
// imports, and call sites across the four tier-1 languages. Detective probes
// consume its reports to produce evidence about orchestration, state
// handling, and tool safety in the audited repository.
package codescan

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
)

// Language identifies a programming language for parsing.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// Tier1Languages are the languages with full extraction support.
var Tier1Languages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

// extToLanguage maps file extensions to languages.
var extToLanguage = map[string]Language{
	".go":  LangGo,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".py":  LangPython,
	".rs":  LangRust,
}

// DetectLanguage returns the language for a file path, or false for
// unsupported extensions.
func DetectLanguage(path string) (Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// SymbolKind classifies extracted symbols.
type SymbolKind string

const (
	SymbolKindFunction  SymbolKind = "function"
	SymbolKindMethod    SymbolKind = "method"
	SymbolKindClass     SymbolKind = "class"
	SymbolKindType      SymbolKind = "type"
	SymbolKindInterface SymbolKind = "interface"
	SymbolKindEnum      SymbolKind = "enum"
	SymbolKindTrait     SymbolKind = "trait"
)

// Symbol is a named declaration extracted from a source file.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	Exported  bool       `json:"exported"`
	StartLine int        `json:"startLine"`
	EndLine   int        `json:"endLine"`
}

// FileReport holds everything extracted from one source file.
type FileReport struct {
	Path     string   `json:"path"`
	Language Language `json:"language"`
	LOC      int      `json:"loc"`
	Symbols  []Symbol `json:"symbols,omitempty"`
	Imports  []string `json:"imports,omitempty"`
	Calls    []string `json:"calls,omitempty"` // dotted callee paths, best effort
}

// HasImport reports whether the file imports a path containing the fragment.
func (r FileReport) HasImport(fragment string) bool {
	for _, imp := range r.Imports {
		if strings.Contains(imp, fragment) {
			return true
		}
	}
	return false
}

// HasCall reports whether any extracted call site contains the fragment.
func (r FileReport) HasCall(fragment string) bool {
	for _, c := range r.Calls {
		if strings.Contains(c, fragment) {
			return true
		}
	}
	return false
}

// HasExactCall reports whether any call site names the callee exactly,
// either as the whole dotted path or as its final segment. Probes use this
// for short names like "go" or "merge" where substring containment would
// match unrelated callees.
func (r FileReport) HasExactCall(name string) bool {
	for _, c := range r.Calls {
		if c == name {
			return true
		}
		if i := strings.LastIndexByte(c, '.'); i >= 0 && c[i+1:] == name {
			return true
		}
	}
	return false
}

// Parser extracts structural information from source files.
// Implementations: TreeSitterParser (production), stubs in tests.
type Parser interface {
	// Parse extracts a report from a single source file.
	Parse(ctx context.Context, path string, source []byte, lang Language) (*FileReport, error)

	// SupportedLanguages returns the languages this parser can handle.
	SupportedLanguages() []Language

	// Close releases parser resources (Tree-sitter C memory).
	Close() error
}

// countLOC counts the number of lines in source by counting newline bytes
// and adding one for the final line if the source is non-empty.
func countLOC(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	return bytes.Count(source, []byte{'\n'}) + 1
}
