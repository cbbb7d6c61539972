// Package detective implements the collector task units: forensic probes
// that gather typed Evidence about the audited repository and its written
// report. Detectives record facts, never opinions; judging is the review
// stage's job.
package detective

import (
	"time"

	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// Collector names. These double as the Source field on every Evidence record
// a collector produces, so evidence identity stays stable across runs.
const (
	sourceRepoInvestigator = "repo-investigator"
	sourceDocAnalyst       = "doc-analyst"
	sourceCrossExaminer    = "cross-examiner"
)

// finding builds an Evidence record for one criterion check.
func finding(c rubric.Criterion, source string, found bool, confidence float64, location, content, rationale string, tags ...string) workflow.Evidence {
	return workflow.Evidence{
		Criterion:  c.ID,
		Source:     source,
		Goal:       c.Goal,
		Found:      found,
		Confidence: confidence,
		Location:   location,
		Content:    content,
		Rationale:  rationale,
		Tags:       tags,
		Timestamp:  time.Now(),
	}
}

// compensate builds the degraded slate for a failed collector: one
// Found=false zero-confidence record per assigned criterion, so synthesis
// still sees absence-of-finding evidence for every dimension.
func compensate(name string, criteria []rubric.Criterion, cause error) *workflow.CompensatedResult {
	partial := workflow.PartialResult{
		Evidence: make(map[string][]workflow.Evidence, len(criteria)),
	}
	for _, c := range criteria {
		partial.Evidence[c.ID] = []workflow.Evidence{
			finding(c, name, false, 0, "n/a", "", "collector failed: "+cause.Error()),
		}
	}
	return &workflow.CompensatedResult{
		Task:    name,
		Cause:   cause.Error(),
		Partial: partial,
	}
}
