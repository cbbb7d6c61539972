package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// storedRun keeps a report and its evidence together.
type storedRun struct {
	report   verdict.Report
	evidence map[string][]workflow.Evidence
}

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu   sync.RWMutex
	runs map[string]storedRun
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{runs: make(map[string]storedRun)}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// SaveRun stores a deep copy keyed by run ID. Saving the same run twice
// overwrites the earlier record.
func (m *MemStore) SaveRun(_ context.Context, rep *verdict.Report, evidence map[string][]workflow.Evidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rep
	cp.Verdicts = make([]verdict.Verdict, len(rep.Verdicts))
	copy(cp.Verdicts, rep.Verdicts)

	ev := make(map[string][]workflow.Evidence, len(evidence))
	for k, list := range evidence {
		records := make([]workflow.Evidence, len(list))
		copy(records, list)
		ev[k] = records
	}
	m.runs[rep.RunID] = storedRun{report: cp, evidence: ev}
	return nil
}

// GetRun returns the report for a run ID, or nil if not found.
func (m *MemStore) GetRun(_ context.Context, runID string) (*verdict.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}
	rep := run.report
	return &rep, nil
}

// ListRuns returns summaries sorted most recent first.
func (m *MemStore) ListRuns(_ context.Context) ([]RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]RunSummary, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, RunSummary{
			RunID:        run.report.RunID,
			RepoURL:      run.report.Target.RepoURL,
			OverallScore: run.report.OverallScore,
			Criteria:     len(run.report.Verdicts),
			GeneratedAt:  run.report.GeneratedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out, nil
}

// QueryEvidence returns archived evidence for a criterion across all runs.
func (m *MemStore) QueryEvidence(_ context.Context, criterion string, limit int) ([]workflow.Evidence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Iterate runs in a stable order so repeated queries agree.
	ids := make([]string, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var results []workflow.Evidence
	for _, id := range ids {
		for _, ev := range m.runs[id].evidence[criterion] {
			results = append(results, ev)
			if limit > 0 && len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

// ScoreHistory returns a criterion's final score per run, oldest first.
func (m *MemStore) ScoreHistory(_ context.Context, criterion string) ([]ScorePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var points []ScorePoint
	for _, run := range m.runs {
		for _, v := range run.report.Verdicts {
			if v.Criterion == criterion {
				points = append(points, ScorePoint{
					RunID:       run.report.RunID,
					Score:       v.FinalScore,
					GeneratedAt: run.report.GeneratedAt,
				})
			}
		}
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].GeneratedAt.Before(points[j].GeneratedAt)
	})
	return points, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
