package detective

import (
	"context"
	"fmt"
	"log"

	"github.com/dusk-indust/tribunal/internal/codescan"
	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

var _ workflow.TaskUnit = (*RepoInvestigator)(nil)

// RepoInvestigator is the collector for repository-artifact criteria. It
// materializes the target repository into a sandbox, reads its commit
// history, parses its source tree, and runs each criterion's probe over the
// result.
type RepoInvestigator struct {
	rubric *rubric.Rubric
	parser codescan.Parser
}

// NewRepoInvestigator wires a repository collector to a rubric and a parser.
// The parser is shared across stages; the investigator does not close it.
func NewRepoInvestigator(r *rubric.Rubric, parser codescan.Parser) *RepoInvestigator {
	return &RepoInvestigator{rubric: r, parser: parser}
}

func (d *RepoInvestigator) Name() string          { return sourceRepoInvestigator }
func (d *RepoInvestigator) Stage() workflow.Stage { return workflow.StageCollection }

// Execute clones, scans, and probes. Individual probe failures degrade to a
// Found=false record for that criterion rather than failing the whole task.
func (d *RepoInvestigator) Execute(ctx context.Context, snap workflow.Snapshot) (*workflow.PartialResult, error) {
	criteria := d.rubric.ByArtifact(rubric.ArtifactRepo)
	if len(criteria) == 0 {
		return &workflow.PartialResult{}, nil
	}

	root, cleanup, err := materialize(ctx, snap.Target.RepoURL)
	if err != nil {
		return nil, fmt.Errorf("detective: materialize %s: %w", snap.Target.RepoURL, err)
	}
	defer cleanup()

	rctx := repoContext{Root: root}
	if rctx.History, err = readGitHistory(ctx, root); err != nil {
		// A repository without readable history is still auditable; the
		// git-progression probe reports the absence as evidence.
		log.Printf("WARNING: detective: %v", err)
	}

	files, warnings, err := codescan.ScanDir(ctx, d.parser, root)
	if err != nil {
		return nil, fmt.Errorf("detective: scan %s: %w", snap.Target.RepoURL, err)
	}
	rctx.Files = files

	partial := &workflow.PartialResult{
		Evidence: make(map[string][]workflow.Evidence, len(criteria)),
		Warnings: warnings,
		Meta: map[string]string{
			"repo:files": fmt.Sprintf("%d", len(files)),
		},
	}
	for _, c := range criteria {
		records, err := runProbe(rctx, c)
		if err != nil {
			partial.Evidence[c.ID] = []workflow.Evidence{
				finding(c, sourceRepoInvestigator, false, 0, ".", "",
					"probe failed: "+err.Error()),
			}
			partial.Warnings = append(partial.Warnings,
				fmt.Sprintf("probe %s for %s: %v", c.Probe, c.ID, err))
			continue
		}
		partial.Evidence[c.ID] = records
	}
	return partial, nil
}

// Compensate produces a degraded slate covering every repository criterion.
func (d *RepoInvestigator) Compensate(_ workflow.Snapshot, cause error) *workflow.CompensatedResult {
	return compensate(sourceRepoInvestigator, d.rubric.ByArtifact(rubric.ArtifactRepo), cause)
}
