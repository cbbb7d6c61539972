package mcptools

import (
	"github.com/dusk-indust/tribunal/internal/archive"
	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// RunAuditInput is the input for the run_audit MCP tool.
type RunAuditInput struct {
	RepoURL    string `json:"repoUrl" jsonschema:"git URL or local path of the repository to audit"`
	ReportPath string `json:"reportPath,omitempty" jsonschema:"path to the written report that accompanies the repository"`
	RubricPath string `json:"rubricPath,omitempty" jsonschema:"path to a rubric YAML file (default: built-in rubric)"`
}

// RunAuditOutput is the result of the run_audit MCP tool.
type RunAuditOutput struct {
	Report *verdict.Report `json:"report"`
}

// GetReportInput is the input for the get_report MCP tool.
type GetReportInput struct {
	RunID    string `json:"runId" jsonschema:"identifier of an archived audit run"`
	Markdown bool   `json:"markdown,omitempty" jsonschema:"also render the report as markdown"`
}

// GetReportOutput is the result of the get_report MCP tool.
type GetReportOutput struct {
	Report   *verdict.Report `json:"report"`
	Markdown string          `json:"markdown,omitempty"`
}

// ListRunsInput is the input for the list_runs MCP tool.
type ListRunsInput struct{}

// ListRunsOutput is the result of the list_runs MCP tool.
type ListRunsOutput struct {
	Runs  []archive.RunSummary `json:"runs"`
	Total int                  `json:"total"`
}

// QueryEvidenceInput is the input for the query_evidence MCP tool.
type QueryEvidenceInput struct {
	Criterion string `json:"criterion" jsonschema:"rubric criterion ID to fetch evidence for"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of records (default: 20)"`
}

// QueryEvidenceOutput is the result of the query_evidence MCP tool.
type QueryEvidenceOutput struct {
	Evidence []workflow.Evidence `json:"evidence"`
	Total    int                 `json:"total"`
}

// ScoreHistoryInput is the input for the score_history MCP tool.
type ScoreHistoryInput struct {
	Criterion string `json:"criterion" jsonschema:"rubric criterion ID to chart across runs"`
}

// ScoreHistoryOutput is the result of the score_history MCP tool.
type ScoreHistoryOutput struct {
	Points []archive.ScorePoint `json:"points"`
}
