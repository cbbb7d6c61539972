package detective

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dusk-indust/tribunal/internal/codescan"
	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// repoContext is everything a probe may inspect about the cloned repository.
type repoContext struct {
	Root    string
	Files   []codescan.FileReport
	History *GitHistory
}

// probeFunc inspects the repository for one criterion and returns the
// evidence records it produced.
type probeFunc func(ctx repoContext, c rubric.Criterion) ([]workflow.Evidence, error)

// probes maps rubric probe names to their implementations. A criterion whose
// probe is absent here falls back to pattern scanning.
var probes = map[string]probeFunc{
	"git-progression":        probeGitProgression,
	"parallel-orchestration": probeParallelOrchestration,
	"state-reducers":         probeStateReducers,
	"sandboxed-tooling":      probeSandboxedTooling,
	"pattern-scan":           probePatternScan,
}

func runProbe(ctx repoContext, c rubric.Criterion) ([]workflow.Evidence, error) {
	fn, ok := probes[c.Probe]
	if !ok {
		fn = probePatternScan
	}
	return fn(ctx, c)
}

// probeGitProgression reads the commit-history classification produced during
// materialization and judges whether the repository grew iteratively.
func probeGitProgression(ctx repoContext, c rubric.Criterion) ([]workflow.Evidence, error) {
	h := ctx.History
	if h == nil || h.TotalCommits == 0 {
		ev := finding(c, sourceRepoInvestigator, false, 0.9, ".git",
			"no commit history", "repository has no readable commit log")
		return []workflow.Evidence{ev}, nil
	}

	var records []workflow.Evidence
	switch {
	case h.HasProgression():
		records = append(records, finding(c, sourceRepoInvestigator, true, 0.9, ".git",
			fmt.Sprintf("%d commits, %s..%s", h.TotalCommits, h.FirstCommit, h.LastCommit),
			"commit subjects show a setup, tooling, then orchestration arc"))
	case h.BulkUpload:
		records = append(records, finding(c, sourceRepoInvestigator, false, 0.85, ".git",
			fmt.Sprintf("%d commits clustered within minutes", h.TotalCommits),
			"inter-commit gaps average under five minutes, consistent with a bulk upload"))
	default:
		records = append(records, finding(c, sourceRepoInvestigator, false, 0.6, ".git",
			fmt.Sprintf("%d commits, pattern %s", h.TotalCommits, h.Pattern),
			"history exists but does not show a clear development progression"))
	}
	return records, nil
}

// probeParallelOrchestration looks for structural signs of concurrent fan-out:
// goroutine launches, errgroup/worker imports, or framework equivalents.
func probeParallelOrchestration(ctx repoContext, c rubric.Criterion) ([]workflow.Evidence, error) {
	var records []workflow.Evidence
	for _, f := range ctx.Files {
		switch {
		case f.HasExactCall("go"):
			records = append(records, finding(c, sourceRepoInvestigator, true, 0.85, f.Path,
				"goroutine launch", "file spawns goroutines for concurrent work"))
		case f.HasImport("golang.org/x/sync/errgroup"):
			records = append(records, finding(c, sourceRepoInvestigator, true, 0.9, f.Path,
				"errgroup import", "file uses errgroup for structured fan-out"))
		case f.HasCall("add_edge") && f.HasCall("add_node"):
			records = append(records, finding(c, sourceRepoInvestigator, true, 0.8, f.Path,
				"graph wiring calls", "file builds an execution graph with multiple nodes"))
		case f.HasImport("concurrent.futures") || f.HasImport("asyncio"):
			records = append(records, finding(c, sourceRepoInvestigator, true, 0.7, f.Path,
				"concurrency import", "file imports a parallel execution library"))
		}
	}
	if len(records) == 0 {
		records = append(records, finding(c, sourceRepoInvestigator, false, 0.7, ".",
			"no concurrency constructs found",
			"no file launches parallel work or builds a multi-node graph"))
	}
	return records, nil
}

// probeStateReducers checks for merge-safe shared state: reducer annotations,
// merge functions, or the criterion's own success pattern.
func probeStateReducers(ctx repoContext, c rubric.Criterion) ([]workflow.Evidence, error) {
	records, err := scanPatterns(ctx, c)
	if err != nil {
		return nil, err
	}
	for _, f := range ctx.Files {
		if f.HasExactCall("Merge") || f.HasExactCall("merge") {
			records = append(records, finding(c, sourceRepoInvestigator, true, 0.6, f.Path,
				"merge call", "file merges partial results into shared state"))
			break
		}
	}
	if len(records) == 0 {
		records = append(records, finding(c, sourceRepoInvestigator, false, 0.7, ".",
			"no reducer or merge constructs found",
			"shared state appears to be overwritten rather than merged"))
	}
	return records, nil
}

// probeSandboxedTooling distinguishes bounded subprocess execution from raw
// shell access. A failure-pattern hit is tagged as a security concern.
func probeSandboxedTooling(ctx repoContext, c rubric.Criterion) ([]workflow.Evidence, error) {
	failRe, err := compilePattern(c.FailurePattern)
	if err != nil {
		return nil, err
	}
	successRe, err := compilePattern(c.SuccessPattern)
	if err != nil {
		return nil, err
	}

	var records []workflow.Evidence
	for _, f := range ctx.Files {
		content, err := readRepoFile(ctx.Root, f.Path)
		if err != nil {
			continue
		}
		if failRe != nil {
			if loc := findPattern(failRe, content); loc != "" {
				records = append(records, finding(c, sourceRepoInvestigator, false, 0.95,
					f.Path, loc,
					"raw shell execution reachable from tool code",
					workflow.TagSecurityConcern))
			}
		}
		if successRe != nil {
			if loc := findPattern(successRe, content); loc != "" {
				records = append(records, finding(c, sourceRepoInvestigator, true, 0.85,
					f.Path, loc,
					"subprocess execution is bounded by a context or timeout"))
			}
		}
	}
	if len(records) == 0 {
		records = append(records, finding(c, sourceRepoInvestigator, false, 0.5, ".",
			"no subprocess execution found",
			"tool layer neither sandboxes nor shells out; nothing to assess"))
	}
	return records, nil
}

// probePatternScan is the generic probe: grep the repository's source files
// with the criterion's success and failure patterns.
func probePatternScan(ctx repoContext, c rubric.Criterion) ([]workflow.Evidence, error) {
	records, err := scanPatterns(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		records = append(records, finding(c, sourceRepoInvestigator, false, 0.6, ".",
			"no pattern matches",
			fmt.Sprintf("no file matched the expected markers for %s", c.Name)))
	}
	return records, nil
}

// scanPatterns applies a criterion's regex patterns to every scanned file.
func scanPatterns(ctx repoContext, c rubric.Criterion) ([]workflow.Evidence, error) {
	successRe, err := compilePattern(c.SuccessPattern)
	if err != nil {
		return nil, err
	}
	failRe, err := compilePattern(c.FailurePattern)
	if err != nil {
		return nil, err
	}
	if successRe == nil && failRe == nil {
		return nil, nil
	}

	var records []workflow.Evidence
	for _, f := range ctx.Files {
		content, err := readRepoFile(ctx.Root, f.Path)
		if err != nil {
			continue
		}
		if successRe != nil {
			if loc := findPattern(successRe, content); loc != "" {
				records = append(records, finding(c, sourceRepoInvestigator, true, 0.8,
					f.Path, loc, "expected marker present"))
			}
		}
		if failRe != nil {
			if loc := findPattern(failRe, content); loc != "" {
				records = append(records, finding(c, sourceRepoInvestigator, false, 0.8,
					f.Path, loc, "anti-pattern marker present"))
			}
		}
	}
	return records, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("detective: bad probe pattern %q: %w", pattern, err)
	}
	return re, nil
}

// findPattern returns the first matching line of content, trimmed, or "".
func findPattern(re *regexp.Regexp, content string) string {
	for _, line := range strings.Split(content, "\n") {
		if re.MatchString(line) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func readRepoFile(root, rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
