// Package report renders a synthesized audit into its delivery formats:
// markdown for humans, JSON for machines, and a Mermaid diagram of the
// pipeline that produced it.
package report

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// Ratings for the executive summary. A criterion scoring at or above
// strongScore is a strength; at or below weakScore it is a weakness.
const (
	strongScore = 4
	weakScore   = 2
)

// RenderMarkdown produces the full audit report.
func RenderMarkdown(rep *verdict.Report) string {
	var sb strings.Builder

	sb.WriteString("# Audit Verdict\n\n")
	fmt.Fprintf(&sb, "**Run:** `%s`  \n", rep.RunID)
	fmt.Fprintf(&sb, "**Repository:** %s  \n", rep.Target.RepoURL)
	if rep.Target.ReportPath != "" {
		fmt.Fprintf(&sb, "**Report under audit:** %s  \n", rep.Target.ReportPath)
	}
	fmt.Fprintf(&sb, "**Overall score:** %.1f / 5  \n", rep.OverallScore)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", rep.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))

	writeSummary(&sb, rep)
	writeDebate(&sb, rep)
	writeRemediation(&sb, rep)

	if len(rep.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range rep.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString(PipelineDiagram(rep))
	return sb.String()
}

// writeSummary lists strengths and weaknesses by final score.
func writeSummary(sb *strings.Builder, rep *verdict.Report) {
	var strengths, weaknesses []verdict.Verdict
	for _, v := range rep.Verdicts {
		switch {
		case v.FinalScore >= strongScore:
			strengths = append(strengths, v)
		case v.FinalScore <= weakScore:
			weaknesses = append(weaknesses, v)
		}
	}

	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString("### Strengths\n\n")
	if len(strengths) == 0 {
		sb.WriteString("None identified.\n\n")
	} else {
		for _, v := range strengths {
			fmt.Fprintf(sb, "- **%s** (%d/5)\n", v.CriterionName, v.FinalScore)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("### Weaknesses\n\n")
	if len(weaknesses) == 0 {
		sb.WriteString("None identified.\n\n")
	} else {
		for _, v := range weaknesses {
			fmt.Fprintf(sb, "- **%s** (%d/5)\n", v.CriterionName, v.FinalScore)
		}
		sb.WriteString("\n")
	}
}

// writeDebate renders each criterion's bench: one row per persona opinion,
// then the synthesized outcome and any dissent note.
func writeDebate(sb *strings.Builder, rep *verdict.Report) {
	sb.WriteString("## The Debate\n\n")
	for _, v := range rep.Verdicts {
		fmt.Fprintf(sb, "### %s — %d/5\n\n", v.CriterionName, v.FinalScore)

		sb.WriteString("| Persona | Score | Rationale |\n")
		sb.WriteString("|---|---|---|\n")
		for _, o := range v.Opinions {
			score := fmt.Sprintf("%d", o.Score)
			if o.Degraded {
				score += " (degraded)"
			}
			fmt.Fprintf(sb, "| %s | %s | %s |\n",
				personaTitle(o.Persona), score, sanitizeCell(o.Rationale))
		}
		sb.WriteString("\n")

		fmt.Fprintf(sb, "**Applied rules:** %s\n\n", strings.Join(v.AppliedRules, ", "))
		if v.Dissent != "" {
			fmt.Fprintf(sb, "> ⚖ %s\n\n", v.Dissent)
		}
	}
}

// writeRemediation collects the fix-it guidance for everything below par.
func writeRemediation(sb *strings.Builder, rep *verdict.Report) {
	var items []verdict.Verdict
	for _, v := range rep.Verdicts {
		if v.Remediation != "" {
			items = append(items, v)
		}
	}
	if len(items) == 0 {
		return
	}
	sb.WriteString("## Remediation Plan\n\n")
	for i, v := range items {
		fmt.Fprintf(sb, "%d. **%s** — %s\n", i+1, v.CriterionName, v.Remediation)
	}
	sb.WriteString("\n")
}

func personaTitle(p workflow.Persona) string {
	switch p {
	case workflow.PersonaProsecutor:
		return "Prosecutor"
	case workflow.PersonaDefense:
		return "Defense"
	case workflow.PersonaTechLead:
		return "Tech Lead"
	default:
		return string(p)
	}
}

// sanitizeCell keeps rationale text from breaking the markdown table.
func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
