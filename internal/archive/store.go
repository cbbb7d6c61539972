// Package archive persists completed audit runs so verdicts can be compared
// across runs of the same repository. Backends: KuzuStore (durable graph,
// cgo) and MemStore (testing, non-cgo builds).
package archive

import (
	"context"
	"io"
	"time"

	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// Store is the interface for the audit archive backend. All archive access
// goes through this interface.
type Store interface {
	io.Closer

	// Schema setup. Called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// SaveRun persists a synthesized report together with the evidence the
	// verdicts were built from.
	SaveRun(ctx context.Context, rep *verdict.Report, evidence map[string][]workflow.Evidence) error

	// GetRun returns the full report for a run, or nil if unknown.
	GetRun(ctx context.Context, runID string) (*verdict.Report, error)

	// ListRuns returns run summaries, most recent first.
	ListRuns(ctx context.Context) ([]RunSummary, error)

	// QueryEvidence returns archived evidence for a criterion across all
	// runs. A limit <= 0 returns everything.
	QueryEvidence(ctx context.Context, criterion string, limit int) ([]workflow.Evidence, error)

	// ScoreHistory returns a criterion's final score per run, oldest first.
	ScoreHistory(ctx context.Context, criterion string) ([]ScorePoint, error)
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	RunID        string    `json:"runId"`
	RepoURL      string    `json:"repoUrl"`
	OverallScore float64   `json:"overallScore"`
	Criteria     int       `json:"criteria"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// ScorePoint is one criterion score from one archived run.
type ScorePoint struct {
	RunID       string    `json:"runId"`
	Score       int       `json:"score"`
	GeneratedAt time.Time `json:"generatedAt"`
}
