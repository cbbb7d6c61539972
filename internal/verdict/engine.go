package verdict

import (
	"math"
	"strings"
	"time"

	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// Engine synthesizes verdicts from evidence and opinions under a Policy.
type Engine struct {
	policy Policy
}

// NewEngine creates an Engine with the given policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Synthesize reconciles one criterion's evidence and opinions into a Verdict
// by running the fixed rule order. It is a pure function: identical inputs
// always yield the identical verdict.
func (e *Engine) Synthesize(c rubric.Criterion, evidence []workflow.Evidence, opinions []workflow.Opinion) Verdict {
	in := ruleInput{criterion: c, evidence: evidence, opinions: opinions, policy: e.policy}

	st := &ruleState{score: e.policy.NeutralMidpoint}
	for _, o := range opinions {
		if !o.Degraded {
			st.valid = append(st.valid, o)
			st.adjusted = append(st.adjusted, o.Score)
			st.weights = append(st.weights, 1)
		}
	}

	v := Verdict{
		Criterion:     c.ID,
		CriterionName: c.Name,
		Opinions:      opinions,
	}
	for _, r := range rules {
		if r.apply(in, st) {
			v.AppliedRules = append(v.AppliedRules, r.name)
		}
	}

	v.FinalScore = st.score
	v.Dissent = strings.Join(st.notes, "; ")
	if v.FinalScore < 4 && c.Remediation != "" {
		v.Remediation = c.Remediation
	}
	return v
}

// BuildReport synthesizes every rubric criterion in rubric order and
// aggregates the overall score (mean of final scores, one decimal).
func (e *Engine) BuildReport(r *rubric.Rubric, state *workflow.WorkflowState) *Report {
	report := &Report{
		RunID:       state.RunID,
		Target:      state.Target,
		Warnings:    state.Warnings,
		GeneratedAt: time.Now(),
	}

	var sum float64
	for _, c := range r.Criteria {
		v := e.Synthesize(c, state.EvidenceFor(c.ID), state.OpinionsFor(c.ID))
		report.Verdicts = append(report.Verdicts, v)
		sum += float64(v.FinalScore)
	}
	if len(report.Verdicts) > 0 {
		report.OverallScore = math.Round(sum/float64(len(report.Verdicts))*10) / 10
	}
	return report
}
