package codescan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		path string
		lang Language
		ok   bool
	}{
		{"src/state.py", LangPython, true},
		{"internal/fanout.go", LangGo, true},
		{"src/index.tsx", LangTypeScript, true},
		{"lib/main.rs", LangRust, true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}
	for _, tc := range cases {
		lang, ok := DetectLanguage(tc.path)
		assert.Equal(t, tc.ok, ok, tc.path)
		if ok {
			assert.Equal(t, tc.lang, lang, tc.path)
		}
	}
}

func TestHasExactCall(t *testing.T) {
	report := FileReport{Calls: []string{"categorize", "logout", "s.Merge", "fmt.Println"}}

	assert.False(t, report.HasExactCall("go"), "substring containment must not count as a call")
	assert.False(t, report.HasExactCall("merge"))
	assert.True(t, report.HasExactCall("Merge"), "final dotted segment matches")
	assert.True(t, report.HasExactCall("fmt.Println"))

	launched := FileReport{Calls: []string{"go"}}
	assert.True(t, launched.HasExactCall("go"))
}

func TestParse_Go_SymbolsImportsCalls(t *testing.T) {
	src := []byte(`package main

import (
	"os/exec"
	"sync"
)

type Runner interface {
	Run() error
}

type pool struct {
	mu sync.Mutex
}

func (p *pool) Launch() {
	go p.work()
}

func (p *pool) work() {
	exec.CommandContext(nil, "git", "log")
}
`)
	p := NewTreeSitterParser()
	defer p.Close()

	report, err := p.Parse(context.Background(), "pool.go", src, LangGo)
	require.NoError(t, err)

	names := map[string]SymbolKind{}
	for _, s := range report.Symbols {
		names[s.Name] = s.Kind
	}
	assert.Equal(t, SymbolKindInterface, names["Runner"])
	assert.Equal(t, SymbolKindType, names["pool"])
	assert.Equal(t, SymbolKindMethod, names["Launch"])

	assert.True(t, report.HasImport("os/exec"))
	assert.True(t, report.HasCall("exec.CommandContext"))
	assert.True(t, report.HasCall("go"), "goroutine launches are recorded as call sites")
	assert.Greater(t, report.LOC, 10)
}

func TestParse_Python_SymbolsImportsCalls(t *testing.T) {
	src := []byte(`import operator
from langgraph.graph import StateGraph

class AgentState:
    pass

def build():
    builder = StateGraph(AgentState)
    builder.add_edge(START, "worker")
`)
	p := NewTreeSitterParser()
	defer p.Close()

	report, err := p.Parse(context.Background(), "graph.py", src, LangPython)
	require.NoError(t, err)

	var classNames []string
	for _, s := range report.Symbols {
		if s.Kind == SymbolKindClass {
			classNames = append(classNames, s.Name)
		}
	}
	assert.Contains(t, classNames, "AgentState")
	assert.True(t, report.HasImport("operator"))
	assert.True(t, report.HasImport("langgraph.graph"))
	assert.True(t, report.HasCall("builder.add_edge"))
}

func TestParse_UnsupportedLanguage_Error(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()

	_, err := p.Parse(context.Background(), "x.rb", []byte("puts 1"), Language("ruby"))
	require.Error(t, err)
}

func TestScanDir_WalksAndSkipsExcluded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "hook.py"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not source\n"), 0o644))

	p := NewTreeSitterParser()
	defer p.Close()

	reports, warnings, err := ScanDir(context.Background(), p, dir)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, reports, 1)
	assert.Equal(t, "main.go", reports[0].Path)
}

func TestScanDir_MissingRoot_Error(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()

	_, _, err := ScanDir(context.Background(), p, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
