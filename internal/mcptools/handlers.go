package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/tribunal/internal/archive"
	"github.com/dusk-indust/tribunal/internal/audit"
	"github.com/dusk-indust/tribunal/internal/report"
	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// AuditService holds the archive and scheduler settings used by the MCP
// tool handlers.
type AuditService struct {
	store archive.Store
	sched workflow.Options
}

// NewAuditService creates an AuditService backed by the given archive.
func NewAuditService(store archive.Store, sched workflow.Options) *AuditService {
	return &AuditService{store: store, sched: sched}
}

// RunAudit executes a full audit of the given repository and archives the
// result.
func (s *AuditService) RunAudit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunAuditInput,
) (*mcp.CallToolResult, RunAuditOutput, error) {
	if input.RepoURL == "" {
		return nil, RunAuditOutput{}, fmt.Errorf("run_audit: repoUrl is required")
	}

	r := rubric.Default()
	if input.RubricPath != "" {
		var err error
		if r, err = rubric.Load(input.RubricPath); err != nil {
			return nil, RunAuditOutput{}, fmt.Errorf("run_audit: %w", err)
		}
	}

	rep, err := audit.Run(ctx, workflow.Target{
		RepoURL:    input.RepoURL,
		ReportPath: input.ReportPath,
	}, audit.Options{
		Rubric:    r,
		Scheduler: s.sched,
		Archive:   s.store,
	})
	if err != nil {
		return nil, RunAuditOutput{}, fmt.Errorf("run_audit: %w", err)
	}
	return nil, RunAuditOutput{Report: rep}, nil
}

// GetReport fetches an archived run, optionally rendered as markdown.
func (s *AuditService) GetReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetReportInput,
) (*mcp.CallToolResult, GetReportOutput, error) {
	rep, err := s.store.GetRun(ctx, input.RunID)
	if err != nil {
		return nil, GetReportOutput{}, fmt.Errorf("get_report: %w", err)
	}
	if rep == nil {
		return nil, GetReportOutput{}, fmt.Errorf("get_report: unknown run %q", input.RunID)
	}
	out := GetReportOutput{Report: rep}
	if input.Markdown {
		out.Markdown = report.RenderMarkdown(rep)
	}
	return nil, out, nil
}

// ListRuns returns summaries of every archived run.
func (s *AuditService) ListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	runs, err := s.store.ListRuns(ctx)
	if err != nil {
		return nil, ListRunsOutput{}, fmt.Errorf("list_runs: %w", err)
	}
	return nil, ListRunsOutput{Runs: runs, Total: len(runs)}, nil
}

// QueryEvidence returns archived evidence for a criterion across runs.
func (s *AuditService) QueryEvidence(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryEvidenceInput,
) (*mcp.CallToolResult, QueryEvidenceOutput, error) {
	if input.Criterion == "" {
		return nil, QueryEvidenceOutput{}, fmt.Errorf("query_evidence: criterion is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	records, err := s.store.QueryEvidence(ctx, input.Criterion, limit)
	if err != nil {
		return nil, QueryEvidenceOutput{}, fmt.Errorf("query_evidence: %w", err)
	}
	return nil, QueryEvidenceOutput{Evidence: records, Total: len(records)}, nil
}

// ScoreHistory charts a criterion's final score across archived runs.
func (s *AuditService) ScoreHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScoreHistoryInput,
) (*mcp.CallToolResult, ScoreHistoryOutput, error) {
	if input.Criterion == "" {
		return nil, ScoreHistoryOutput{}, fmt.Errorf("score_history: criterion is required")
	}
	points, err := s.store.ScoreHistory(ctx, input.Criterion)
	if err != nil {
		return nil, ScoreHistoryOutput{}, fmt.Errorf("score_history: %w", err)
	}
	return nil, ScoreHistoryOutput{Points: points}, nil
}
