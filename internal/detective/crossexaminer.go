package detective

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

var _ workflow.TaskUnit = (*CrossExaminer)(nil)

// pathPattern matches source-file references in report prose: backticked or
// bare relative paths with a recognizable extension.
var pathPattern = regexp.MustCompile("`?([A-Za-z0-9_./-]+\\.(?:go|py|ts|tsx|rs|md|ya?ml|json|toml))`?")

// CrossExaminer verifies the report's factual claims against the repository:
// every file path the report cites must exist in the repo tree. A report
// describing files that are not there is fabricating its own audit trail.
type CrossExaminer struct {
	rubric *rubric.Rubric
}

func NewCrossExaminer(r *rubric.Rubric) *CrossExaminer {
	return &CrossExaminer{rubric: r}
}

func (d *CrossExaminer) Name() string          { return sourceCrossExaminer }
func (d *CrossExaminer) Stage() workflow.Stage { return workflow.StageCollection }

func (d *CrossExaminer) criteria() []rubric.Criterion {
	var out []rubric.Criterion
	for _, c := range d.rubric.ByArtifact(rubric.ArtifactReport) {
		if c.Probe == "path-accuracy" {
			out = append(out, c)
		}
	}
	return out
}

func (d *CrossExaminer) Execute(ctx context.Context, snap workflow.Snapshot) (*workflow.PartialResult, error) {
	criteria := d.criteria()
	if len(criteria) == 0 {
		return &workflow.PartialResult{}, nil
	}
	if snap.Target.ReportPath == "" {
		return nil, fmt.Errorf("detective: no report path configured")
	}
	data, err := os.ReadFile(snap.Target.ReportPath)
	if err != nil {
		return nil, fmt.Errorf("detective: read report: %w", err)
	}

	root, cleanup, err := materialize(ctx, snap.Target.RepoURL)
	if err != nil {
		return nil, fmt.Errorf("detective: materialize %s: %w", snap.Target.RepoURL, err)
	}
	defer cleanup()

	cited := extractPaths(string(data))
	partial := &workflow.PartialResult{
		Evidence: make(map[string][]workflow.Evidence, len(criteria)),
	}
	for _, c := range criteria {
		partial.Evidence[c.ID] = d.check(c, root, cited)
	}
	return partial, nil
}

// check tests each cited path against the repo tree and summarizes accuracy.
func (d *CrossExaminer) check(c rubric.Criterion, root string, cited []string) []workflow.Evidence {
	if len(cited) == 0 {
		return []workflow.Evidence{
			finding(c, sourceCrossExaminer, false, 0.6, "report",
				"no file paths cited",
				"report never references a concrete repository file"),
		}
	}

	var records []workflow.Evidence
	hits := 0
	for _, p := range cited {
		if _, err := os.Stat(filepath.Join(root, p)); err == nil {
			hits++
			records = append(records, finding(c, sourceCrossExaminer, true, 0.9,
				p, "cited path exists", "report's reference matches the repo tree"))
		} else {
			records = append(records, finding(c, sourceCrossExaminer, false, 0.9,
				p, "cited path missing", "report references a file the repo does not contain"))
		}
	}
	records = append(records, finding(c, sourceCrossExaminer, hits == len(cited), 0.85,
		"report",
		fmt.Sprintf("%d/%d cited paths verified", hits, len(cited)),
		"aggregate path-accuracy check"))
	return records
}

// extractPaths pulls the unique relative file paths cited by report prose,
// sorted for stable evidence ordering.
func extractPaths(text string) []string {
	seen := map[string]bool{}
	for _, m := range pathPattern.FindAllStringSubmatch(text, -1) {
		p := strings.Trim(m[1], "./")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (d *CrossExaminer) Compensate(_ workflow.Snapshot, cause error) *workflow.CompensatedResult {
	return compensate(sourceCrossExaminer, d.criteria(), cause)
}
