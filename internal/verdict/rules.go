package verdict

import (
	"fmt"
	"math"
	"strings"

	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// ruleInput is the immutable input to every synthesis rule.
type ruleInput struct {
	criterion rubric.Criterion
	evidence  []workflow.Evidence
	opinions  []workflow.Opinion // arrival order, degraded included
	policy    Policy
}

// ruleState carries the working result between rules. Rules mutate only the
// state, never the input.
type ruleState struct {
	valid    []workflow.Opinion // non-degraded opinions, arrival order
	adjusted []int              // fact-adjusted scores, parallel to valid
	weights  []float64          // aggregation weights, parallel to valid
	score    int                // working final score
	settled  bool               // numeric score decided, later numeric rules defer
	notes    []string           // dissent fragments, in firing order
}

// rule is one step of the synthesis pipeline: it fires or defers.
// The fired-rule trail is derived mechanically from the return values.
type rule struct {
	name  string
	apply func(in ruleInput, st *ruleState) bool
}

// rules is the fixed evaluation order. Fact adjustment and the aggregate run
// before the security cap and the dissent check because both of those apply
// to the computed aggregate.
var rules = []rule{
	{RuleFactSupremacy, applyFactSupremacy},
	{RuleNoValidOpinions, applyNoValidOpinions},
	{RuleFunctionalityWeighted, applyFunctionalityWeighting},
	{RuleWeightedAggregate, applyWeightedAggregate},
	{RuleSecurityOverride, applySecurityOverride},
	{RuleDissentFlagged, applyDissentRequirement},
}

// applyFactSupremacy discounts opinions that contradict directly observed
// evidence: a score above the midpoint citing a Found=false record, or a
// score below the midpoint citing a confident Found=true record, is replaced
// by the evidence-supported score. External evidence outranks opinion text.
func applyFactSupremacy(in ruleInput, st *ruleState) bool {
	byID := make(map[string]workflow.Evidence, len(in.evidence))
	for _, ev := range in.evidence {
		byID[ev.ID()] = ev
	}

	fired := false
	for i, o := range st.valid {
		for _, cited := range o.CitedEvidence {
			ev, ok := byID[cited]
			if !ok {
				continue
			}
			overclaims := o.Score > in.policy.NeutralMidpoint && !ev.Found
			underclaims := o.Score < in.policy.NeutralMidpoint && ev.Found && ev.Confidence >= 0.8
			if !overclaims && !underclaims {
				continue
			}
			supported := evidenceSupportedScore(in.evidence, in.policy)
			if st.adjusted[i] != supported {
				st.adjusted[i] = supported
				st.notes = append(st.notes, fmt.Sprintf(
					"%s score %d contradicted by evidence %s (found=%t), discounted to %d",
					o.Persona, o.Score, ev.ID(), ev.Found, supported))
				fired = true
			}
			break
		}
	}
	return fired
}

// applyNoValidOpinions settles the score at the neutral midpoint when every
// persona failed and only degraded placeholders exist.
func applyNoValidOpinions(in ruleInput, st *ruleState) bool {
	if len(st.valid) > 0 {
		return false
	}
	st.score = in.policy.NeutralMidpoint
	st.settled = true
	st.notes = append(st.notes, "no valid opinions: all personas degraded, neutral midpoint assigned")
	return true
}

// applyFunctionalityWeighting raises the pragmatic persona's weight on
// criteria tagged architecture-relevant.
func applyFunctionalityWeighting(in ruleInput, st *ruleState) bool {
	if st.settled || !in.criterion.HasTag(rubric.TagArchitectureRelevant) {
		return false
	}
	fired := false
	for i, o := range st.valid {
		if o.Persona == workflow.PersonaTechLead {
			st.weights[i] = in.policy.PragmaticWeight
			fired = true
		}
	}
	return fired
}

// applyWeightedAggregate computes the base score: weighted mean of the
// fact-adjusted non-degraded scores, rounded half-up.
func applyWeightedAggregate(_ ruleInput, st *ruleState) bool {
	if st.settled {
		return false
	}
	var sum, weight float64
	for i, s := range st.adjusted {
		sum += float64(s) * st.weights[i]
		weight += st.weights[i]
	}
	st.score = clampScore(int(math.Floor(sum/weight + 0.5)))
	st.settled = true
	return true
}

// applySecurityOverride caps the score when any evidence carries a
// security-concern tag, regardless of opinion scores.
func applySecurityOverride(in ruleInput, st *ruleState) bool {
	capping := securityEvidence(in.evidence)
	if capping == nil {
		return false
	}
	if st.score > in.policy.SecurityCap {
		st.score = in.policy.SecurityCap
	}
	st.notes = append([]string{fmt.Sprintf(
		"security override: capped at %d by %s (%s)",
		in.policy.SecurityCap, capping.ID(), capping.Goal)}, st.notes...)
	return true
}

// applyDissentRequirement flags runs where non-degraded opinions spread
// beyond the threshold. Dissent affects reporting, never the number.
func applyDissentRequirement(in ruleInput, st *ruleState) bool {
	if len(st.valid) == 0 {
		return false
	}
	lo, hi := st.valid[0].Score, st.valid[0].Score
	for _, o := range st.valid[1:] {
		if o.Score < lo {
			lo = o.Score
		}
		if o.Score > hi {
			hi = o.Score
		}
	}
	if hi-lo <= in.policy.DissentThreshold {
		return false
	}

	var parts []string
	for _, o := range st.valid {
		parts = append(parts, fmt.Sprintf("%s=%d", o.Persona, o.Score))
	}
	st.notes = append(st.notes, fmt.Sprintf(
		"disagreement beyond threshold (spread %d): %s", hi-lo, strings.Join(parts, ", ")))
	return true
}

// securityEvidence returns the first security-tagged record, or nil.
func securityEvidence(evidence []workflow.Evidence) *workflow.Evidence {
	for i, ev := range evidence {
		if ev.HasTag(workflow.TagSecurityConcern) {
			return &evidence[i]
		}
	}
	return nil
}

// evidenceSupportedScore maps the confidence-weighted found ratio of a
// criterion's evidence onto the 1..5 scale.
func evidenceSupportedScore(evidence []workflow.Evidence, p Policy) int {
	var found, total float64
	for _, ev := range evidence {
		total += ev.Confidence
		if ev.Found {
			found += ev.Confidence
		}
	}
	if total == 0 {
		return p.NeutralMidpoint
	}
	return clampScore(1 + int(math.Floor(found/total*4+0.5)))
}

func clampScore(s int) int {
	if s < 1 {
		return 1
	}
	if s > 5 {
		return 5
	}
	return s
}
