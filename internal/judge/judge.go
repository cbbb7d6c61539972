// Package judge implements the review task units: three fixed persona
// lenses that read the collected evidence for every criterion and emit one
// scored Opinion each. Judges never touch the repository; the evidence
// snapshot is their entire world.
package judge

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

var _ workflow.TaskUnit = (*Judge)(nil)

// Judge evaluates every rubric criterion through one persona's lens.
type Judge struct {
	persona  workflow.Persona
	rubric   *rubric.Rubric
	midpoint int // neutral score for degraded opinions, from the synthesis policy
	score    func(sc scorecard) (int, string)
}

// NewJudge builds the evaluator for one persona.
func NewJudge(persona workflow.Persona, r *rubric.Rubric) (*Judge, error) {
	j := &Judge{persona: persona, rubric: r, midpoint: 3}
	if r.Synthesis.NeutralMidpoint > 0 {
		j.midpoint = r.Synthesis.NeutralMidpoint
	}
	switch persona {
	case workflow.PersonaProsecutor:
		j.score = scoreProsecutor
	case workflow.PersonaDefense:
		j.score = scoreDefense
	case workflow.PersonaTechLead:
		j.score = scoreTechLead
	default:
		return nil, fmt.Errorf("judge: unknown persona %q", persona)
	}
	return j, nil
}

// NewPanel builds the full bench, one judge per persona.
func NewPanel(r *rubric.Rubric) ([]*Judge, error) {
	panel := make([]*Judge, 0, len(workflow.Personas))
	for _, p := range workflow.Personas {
		j, err := NewJudge(p, r)
		if err != nil {
			return nil, err
		}
		panel = append(panel, j)
	}
	return panel, nil
}

func (j *Judge) Name() string          { return "judge-" + string(j.persona) }
func (j *Judge) Stage() workflow.Stage { return workflow.StageReview }

// Execute scores every criterion in rubric order. Judges are total: a
// criterion with no evidence still gets an opinion, scored as unproven.
func (j *Judge) Execute(_ context.Context, snap workflow.Snapshot) (*workflow.PartialResult, error) {
	partial := &workflow.PartialResult{}
	for _, c := range j.rubric.Criteria {
		evidence := snap.EvidenceFor(c.ID)
		sc := summarize(c, evidence)
		score, rationale := j.score(sc)
		partial.Opinions = append(partial.Opinions, workflow.Opinion{
			Criterion:     c.ID,
			Persona:       j.persona,
			Score:         score,
			Rationale:     rationale,
			CitedEvidence: sc.cited,
			Timestamp:     time.Now(),
		})
	}
	return partial, nil
}

// Compensate emits a full degraded slate: neutral midpoint opinions for
// every criterion, flagged so synthesis can discount them.
func (j *Judge) Compensate(_ workflow.Snapshot, cause error) *workflow.CompensatedResult {
	partial := workflow.PartialResult{}
	for _, c := range j.rubric.Criteria {
		partial.Opinions = append(partial.Opinions, workflow.Opinion{
			Criterion: c.ID,
			Persona:   j.persona,
			Score:     j.midpoint,
			Rationale: "judge failed: " + cause.Error(),
			Degraded:  true,
			Timestamp: time.Now(),
		})
	}
	return &workflow.CompensatedResult{
		Task:    j.Name(),
		Cause:   cause.Error(),
		Partial: partial,
	}
}

// scorecard condenses a criterion's evidence for the persona scorers.
type scorecard struct {
	criterion rubric.Criterion
	total     int      // records with any confidence
	support   float64  // confidence-weighted found ratio, 0..1
	security  bool     // a security-concern record exists
	cited     []string // evidence IDs considered
}

func summarize(c rubric.Criterion, evidence []workflow.Evidence) scorecard {
	sc := scorecard{criterion: c}
	var weight, found float64
	for _, ev := range evidence {
		if ev.Confidence <= 0 {
			continue
		}
		sc.total++
		sc.cited = append(sc.cited, ev.ID())
		weight += ev.Confidence
		if ev.Found {
			found += ev.Confidence
		}
		if ev.HasTag(workflow.TagSecurityConcern) {
			sc.security = true
		}
	}
	if weight > 0 {
		sc.support = found / weight
	}
	return sc
}

// scoreProsecutor is the adversarial lens: claims are guilty until the
// evidence proves them, so the support ratio rounds down and a security
// finding caps the score outright.
func scoreProsecutor(sc scorecard) (int, string) {
	if sc.total == 0 {
		return 1, fmt.Sprintf("no usable evidence for %s; an unproven claim scores as absent", sc.criterion.Name)
	}
	score := 1 + int(sc.support*4)
	if sc.security && score > 2 {
		score = 2
	}
	if score > 5 {
		score = 5
	}
	return score, fmt.Sprintf("%.0f%% of the evidence weight supports %s; the gaps are charged against it",
		sc.support*100, sc.criterion.Name)
}

// scoreDefense is the optimistic lens: partial evidence earns the benefit
// of the doubt, so the support ratio rounds up.
func scoreDefense(sc scorecard) (int, string) {
	if sc.total == 0 {
		return 3, fmt.Sprintf("no evidence either way for %s; absence of proof is not proof of absence", sc.criterion.Name)
	}
	score := 1 + int(math.Ceil(sc.support*4))
	if score > 5 {
		score = 5
	}
	return score, fmt.Sprintf("%.0f%% of the evidence weight favors %s; intent and partial work count for something",
		sc.support*100, sc.criterion.Name)
}

// scoreTechLead is the pragmatic lens: does it work, sort of work, or not
// work. Three buckets, no partial credit between them.
func scoreTechLead(sc scorecard) (int, string) {
	if sc.total == 0 {
		return 2, fmt.Sprintf("nothing to verify for %s; I would not ship it", sc.criterion.Name)
	}
	switch {
	case sc.support >= 0.75:
		return 5, fmt.Sprintf("%s works; the evidence holds up under load", sc.criterion.Name)
	case sc.support >= 0.4:
		return 3, fmt.Sprintf("%s half works; it would need another pass before shipping", sc.criterion.Name)
	default:
		return 1, fmt.Sprintf("%s does not hold up; the claimed behavior is not in the code", sc.criterion.Name)
	}
}
