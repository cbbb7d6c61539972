package mcptools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/tribunal/internal/archive"
	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

func seededService(t *testing.T) *AuditService {
	t.Helper()
	store := archive.NewMemStore()
	t.Cleanup(func() { store.Close() })

	rep := &verdict.Report{
		RunID:        "run-1",
		Target:       workflow.Target{RepoURL: "https://example.com/repo.git"},
		OverallScore: 4.0,
		GeneratedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Verdicts: []verdict.Verdict{
			{
				Criterion:     "orchestration",
				CriterionName: "Parallel Orchestration",
				FinalScore:    4,
				AppliedRules:  []string{verdict.RuleWeightedAggregate},
			},
		},
	}
	evidence := map[string][]workflow.Evidence{
		"orchestration": {
			{Criterion: "orchestration", Source: "repo-investigator", Found: true,
				Confidence: 0.9, Location: "pool.go"},
		},
	}
	require.NoError(t, store.SaveRun(context.Background(), rep, evidence))
	return NewAuditService(store, workflow.Options{})
}

func TestRunAudit_RequiresRepoURL(t *testing.T) {
	svc := seededService(t)
	_, _, err := svc.RunAudit(context.Background(), nil, RunAuditInput{})
	assert.ErrorContains(t, err, "repoUrl")
}

func TestGetReport_RoundTrip(t *testing.T) {
	svc := seededService(t)
	_, out, err := svc.GetReport(context.Background(), nil, GetReportInput{
		RunID:    "run-1",
		Markdown: true,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Report)
	assert.Equal(t, 4.0, out.Report.OverallScore)
	assert.Contains(t, out.Markdown, "# Audit Verdict")
}

func TestGetReport_UnknownRun(t *testing.T) {
	svc := seededService(t)
	_, _, err := svc.GetReport(context.Background(), nil, GetReportInput{RunID: "nope"})
	assert.ErrorContains(t, err, "unknown run")
}

func TestListRuns(t *testing.T) {
	svc := seededService(t)
	_, out, err := svc.ListRuns(context.Background(), nil, ListRunsInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Runs, 1)
	assert.Equal(t, "run-1", out.Runs[0].RunID)
}

func TestQueryEvidence(t *testing.T) {
	svc := seededService(t)

	_, out, err := svc.QueryEvidence(context.Background(), nil, QueryEvidenceInput{
		Criterion: "orchestration",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Evidence, 1)
	assert.Equal(t, "pool.go", out.Evidence[0].Location)

	_, _, err = svc.QueryEvidence(context.Background(), nil, QueryEvidenceInput{})
	assert.ErrorContains(t, err, "criterion")
}

func TestScoreHistory(t *testing.T) {
	svc := seededService(t)
	_, out, err := svc.ScoreHistory(context.Background(), nil, ScoreHistoryInput{
		Criterion: "orchestration",
	})
	require.NoError(t, err)
	require.Len(t, out.Points, 1)
	assert.Equal(t, 4, out.Points[0].Score)
}

func TestNewAuditMCPServer_Registers(t *testing.T) {
	svc := seededService(t)
	server := NewAuditMCPServer(svc)
	assert.NotNil(t, server)
}
