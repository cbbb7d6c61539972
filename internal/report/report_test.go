package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

func sampleReport() *verdict.Report {
	return &verdict.Report{
		RunID: "run-42",
		Target: workflow.Target{
			RepoURL:    "https://example.com/audited.git",
			ReportPath: "report.md",
		},
		OverallScore: 3.5,
		GeneratedAt:  time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Warnings:     []string{"doc-analyst degraded to compensation"},
		Verdicts: []verdict.Verdict{
			{
				Criterion:     "orchestration",
				CriterionName: "Parallel Orchestration",
				FinalScore:    5,
				AppliedRules:  []string{verdict.RuleWeightedAggregate},
				Opinions: []workflow.Opinion{
					{Criterion: "orchestration", Persona: workflow.PersonaProsecutor, Score: 4,
						Rationale: "evidence | holds", CitedEvidence: []string{"orchestration/repo-investigator@pool.go"}},
					{Criterion: "orchestration", Persona: workflow.PersonaDefense, Score: 5},
					{Criterion: "orchestration", Persona: workflow.PersonaTechLead, Score: 5},
				},
			},
			{
				Criterion:     "safe_tooling",
				CriterionName: "Sandboxed Tooling",
				FinalScore:    2,
				Dissent:       "scores ranged from 1 to 4",
				AppliedRules:  []string{verdict.RuleSecurityOverride, verdict.RuleDissentFlagged},
				Remediation:   "Bound subprocess execution with a context deadline.",
				Opinions: []workflow.Opinion{
					{Criterion: "safe_tooling", Persona: workflow.PersonaProsecutor, Score: 1},
					{Criterion: "safe_tooling", Persona: workflow.PersonaDefense, Score: 4},
					{Criterion: "safe_tooling", Persona: workflow.PersonaTechLead, Score: 3, Degraded: true},
				},
			},
		},
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	md := RenderMarkdown(sampleReport())

	assert.Contains(t, md, "# Audit Verdict")
	assert.Contains(t, md, "**Overall score:** 3.5 / 5")
	assert.Contains(t, md, "## Executive Summary")
	assert.Contains(t, md, "- **Parallel Orchestration** (5/5)")
	assert.Contains(t, md, "- **Sandboxed Tooling** (2/5)")
	assert.Contains(t, md, "## The Debate")
	assert.Contains(t, md, "| Prosecutor | 1 |")
	assert.Contains(t, md, "3 (degraded)")
	assert.Contains(t, md, "scores ranged from 1 to 4")
	assert.Contains(t, md, "## Remediation Plan")
	assert.Contains(t, md, "Bound subprocess execution")
	assert.Contains(t, md, "## Warnings")
	assert.Contains(t, md, "```mermaid")
}

func TestRenderMarkdown_EscapesTableCells(t *testing.T) {
	md := RenderMarkdown(sampleReport())
	assert.Contains(t, md, `evidence \| holds`)
}

func TestRenderMarkdown_NoRemediationSectionWhenClean(t *testing.T) {
	rep := sampleReport()
	rep.Verdicts = rep.Verdicts[:1]
	md := RenderMarkdown(rep)
	assert.NotContains(t, md, "## Remediation Plan")
}

func TestPipelineDiagram(t *testing.T) {
	diagram := PipelineDiagram(sampleReport())

	assert.Contains(t, diagram, "graph TD")
	// Collector derived from cited evidence IDs.
	assert.Contains(t, diagram, `C0["repo-investigator"]`)
	assert.Contains(t, diagram, `judge-prosecutor`)
	assert.Contains(t, diagram, "E --> J0")
	assert.Contains(t, diagram, "J2 --> V")
	// Tech lead has non-degraded opinions elsewhere, so no dashed node.
	assert.NotContains(t, diagram, "judge-tech-lead (degraded)")
}

func TestPipelineDiagram_DegradedJudge(t *testing.T) {
	rep := sampleReport()
	for vi := range rep.Verdicts {
		for oi, o := range rep.Verdicts[vi].Opinions {
			if o.Persona == workflow.PersonaDefense {
				rep.Verdicts[vi].Opinions[oi].Degraded = true
			}
		}
	}
	diagram := PipelineDiagram(rep)
	assert.Contains(t, diagram, "judge-defense (degraded)")
}

func TestRenderJSON_RoundTrips(t *testing.T) {
	data, err := RenderJSON(sampleReport())
	require.NoError(t, err)

	var decoded verdict.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-42", decoded.RunID)
	require.Len(t, decoded.Verdicts, 2)
	assert.Equal(t, 2, decoded.Verdicts[1].FinalScore)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	mdPath, err := WriteFiles(sampleReport(), dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "verdict_run-42.md"), mdPath)
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# Audit Verdict"))

	jsonData, err := os.ReadFile(filepath.Join(dir, "verdict_run-42.json"))
	require.NoError(t, err)
	var decoded verdict.Report
	require.NoError(t, json.Unmarshal(jsonData, &decoded))
	assert.Equal(t, 3.5, decoded.OverallScore)
}
