// Package verdict is the deterministic synthesis engine: it reconciles the
// scored opinions for each criterion into a single auditable verdict by
// applying a fixed, explainable rule order. No step here is probabilistic;
// every rule is a pure function of its inputs.
package verdict

import (
	"time"

	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// Rule names recorded in Verdict.AppliedRules, in evaluation order.
const (
	RuleSecurityOverride      = "security-override"
	RuleFactSupremacy         = "fact-supremacy"
	RuleFunctionalityWeighted = "functionality-weighting"
	RuleDissentFlagged        = "dissent-flagged"
	RuleNoValidOpinions       = "no-valid-opinions"
	RuleWeightedAggregate     = "weighted-aggregate"
)

// Verdict is the single deterministic outcome for one criterion. Computed
// once after all opinions are present, immutable thereafter.
type Verdict struct {
	Criterion     string             `json:"criterion"`
	CriterionName string             `json:"criterionName"`
	FinalScore    int                `json:"finalScore"` // 1..5
	Dissent       string             `json:"dissent,omitempty"`
	AppliedRules  []string           `json:"appliedRules"`
	Opinions      []workflow.Opinion `json:"opinions"`
	Remediation   string             `json:"remediation,omitempty"`
}

// Fired reports whether the named rule is in AppliedRules.
func (v Verdict) Fired(rule string) bool {
	for _, r := range v.AppliedRules {
		if r == rule {
			return true
		}
	}
	return false
}

// Report is the aggregate outcome of one audit run, handed to the report
// assembler.
type Report struct {
	RunID        string             `json:"runId"`
	Target       workflow.Target    `json:"target"`
	OverallScore float64            `json:"overallScore"` // mean of final scores, 1 decimal
	Verdicts     []Verdict          `json:"verdicts"`
	Warnings     []string           `json:"warnings,omitempty"`
	GeneratedAt  time.Time          `json:"generatedAt"`
}

// Policy holds the synthesis constants. The thresholds are configuration,
// not hard-wired: the rubric's synthesis block overrides the defaults.
type Policy struct {
	DissentThreshold int     // opinion spread beyond which dissent is flagged
	SecurityCap      int     // score ceiling under a security override
	NeutralMidpoint  int     // score used when no valid opinions exist
	PragmaticWeight  float64 // tech-lead weight on architecture criteria
}

// DefaultPolicy returns the engine defaults.
func DefaultPolicy() Policy {
	return Policy{
		DissentThreshold: 2,
		SecurityCap:      3,
		NeutralMidpoint:  3,
		PragmaticWeight:  2.0,
	}
}

// PolicyFrom merges rubric overrides onto the defaults. Zero fields keep
// their default.
func PolicyFrom(s rubric.Synthesis) Policy {
	p := DefaultPolicy()
	if s.DissentThreshold > 0 {
		p.DissentThreshold = s.DissentThreshold
	}
	if s.SecurityCap > 0 {
		p.SecurityCap = s.SecurityCap
	}
	if s.NeutralMidpoint > 0 {
		p.NeutralMidpoint = s.NeutralMidpoint
	}
	if s.PragmaticWeight > 0 {
		p.PragmaticWeight = s.PragmaticWeight
	}
	return p
}
