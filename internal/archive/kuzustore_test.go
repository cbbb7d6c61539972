//go:build cgo

package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

func newTestKuzu(t *testing.T) *KuzuStore {
	t.Helper()
	store, err := NewKuzuStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.InitSchema(context.Background()))
	return store
}

func TestKuzuStore_SaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	store := newTestKuzu(t)

	rep := &verdict.Report{
		RunID: "run-1",
		Target: workflow.Target{
			RepoURL:    "https://example.com/repo.git",
			ReportPath: "report.md",
		},
		OverallScore: 3.5,
		GeneratedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Warnings:     []string{"doc-analyst degraded"},
		Verdicts: []verdict.Verdict{
			{
				Criterion:     "orchestration",
				CriterionName: "Parallel Orchestration",
				FinalScore:    5,
				AppliedRules:  []string{verdict.RuleWeightedAggregate},
				Opinions: []workflow.Opinion{
					{Criterion: "orchestration", Persona: workflow.PersonaProsecutor, Score: 4},
				},
			},
			{
				Criterion:     "safe_tooling",
				CriterionName: "Sandboxed Tooling",
				FinalScore:    2,
				Dissent:       "scores ranged from 1 to 4",
				AppliedRules:  []string{verdict.RuleSecurityOverride},
				Remediation:   "bound subprocess execution",
			},
		},
	}
	require.NoError(t, store.SaveRun(ctx, rep, evidenceFixture("orchestration")))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rep.Target, got.Target)
	assert.Equal(t, 3.5, got.OverallScore)
	assert.Equal(t, rep.GeneratedAt, got.GeneratedAt)
	assert.Equal(t, []string{"doc-analyst degraded"}, got.Warnings)
	require.Len(t, got.Verdicts, 2)
	assert.Equal(t, 5, got.Verdicts[0].FinalScore)
	require.Len(t, got.Verdicts[0].Opinions, 1)
	assert.Equal(t, workflow.PersonaProsecutor, got.Verdicts[0].Opinions[0].Persona)
	assert.Equal(t, "bound subprocess execution", got.Verdicts[1].Remediation)
}

func TestKuzuStore_GetRun_Unknown(t *testing.T) {
	store := newTestKuzu(t)
	got, err := store.GetRun(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKuzuStore_ListRunsAndHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestKuzu(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(ctx, reportFixture("first", base, 2), nil))
	require.NoError(t, store.SaveRun(ctx, reportFixture("second", base.Add(time.Hour), 5), nil))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].RunID)
	assert.Equal(t, 1, runs[0].Criteria)

	points, err := store.ScoreHistory(ctx, "orchestration")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "first", points[0].RunID)
	assert.Equal(t, 5, points[1].Score)
}

func TestKuzuStore_QueryEvidence(t *testing.T) {
	ctx := context.Background()
	store := newTestKuzu(t)

	require.NoError(t, store.SaveRun(ctx, reportFixture("run-1", time.Now(), 3),
		evidenceFixture("orchestration")))

	records, err := store.QueryEvidence(ctx, "orchestration", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, ev := range records {
		assert.Equal(t, "orchestration", ev.Criterion)
	}
}
