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

func reportFixture(runID string, at time.Time, score int) *verdict.Report {
	return &verdict.Report{
		RunID:        runID,
		Target:       workflow.Target{RepoURL: "https://example.com/repo.git"},
		OverallScore: float64(score),
		GeneratedAt:  at,
		Verdicts: []verdict.Verdict{
			{
				Criterion:     "orchestration",
				CriterionName: "Parallel Orchestration",
				FinalScore:    score,
				AppliedRules:  []string{verdict.RuleWeightedAggregate},
			},
		},
	}
}

func evidenceFixture(criterion string) map[string][]workflow.Evidence {
	return map[string][]workflow.Evidence{
		criterion: {
			{Criterion: criterion, Source: "repo-investigator", Found: true,
				Confidence: 0.9, Location: "pool.go"},
			{Criterion: criterion, Source: "cross-examiner", Found: false,
				Confidence: 0.8, Location: "missing.go"},
		},
	}
}

func TestMemStore_SaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.InitSchema(ctx))
	defer store.Close()

	rep := reportFixture("run-1", time.Now(), 4)
	require.NoError(t, store.SaveRun(ctx, rep, evidenceFixture("orchestration")))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rep.RunID, got.RunID)
	require.Len(t, got.Verdicts, 1)
	assert.Equal(t, 4, got.Verdicts[0].FinalScore)
}

func TestMemStore_GetRun_Unknown(t *testing.T) {
	store := NewMemStore()
	got, err := store.GetRun(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemStore_SaveRun_CopiesInput(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	rep := reportFixture("run-1", time.Now(), 4)
	require.NoError(t, store.SaveRun(ctx, rep, nil))

	// Mutating the caller's report must not leak into the archive.
	rep.Verdicts[0].FinalScore = 1

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Verdicts[0].FinalScore)
}

func TestMemStore_ListRuns_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(ctx, reportFixture("old", base, 2), nil))
	require.NoError(t, store.SaveRun(ctx, reportFixture("new", base.Add(time.Hour), 5), nil))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].RunID)
	assert.Equal(t, "old", runs[1].RunID)
	assert.Equal(t, 1, runs[0].Criteria)
}

func TestMemStore_QueryEvidence_AcrossRunsWithLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	now := time.Now()
	require.NoError(t, store.SaveRun(ctx, reportFixture("a", now, 3), evidenceFixture("orchestration")))
	require.NoError(t, store.SaveRun(ctx, reportFixture("b", now, 4), evidenceFixture("orchestration")))

	all, err := store.QueryEvidence(ctx, "orchestration", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	limited, err := store.QueryEvidence(ctx, "orchestration", 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	none, err := store.QueryEvidence(ctx, "unknown", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemStore_ScoreHistory_OldestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(ctx, reportFixture("second", base.Add(time.Hour), 5), nil))
	require.NoError(t, store.SaveRun(ctx, reportFixture("first", base, 2), nil))

	points, err := store.ScoreHistory(ctx, "orchestration")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "first", points[0].RunID)
	assert.Equal(t, 2, points[0].Score)
	assert.Equal(t, "second", points[1].RunID)
	assert.Equal(t, 5, points[1].Score)
}
