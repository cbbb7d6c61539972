package workflow

import (
	"fmt"
	"time"
)

// Persona identifies one of the fixed judge lenses.
type Persona string

const (
	PersonaProsecutor Persona = "prosecutor" // adversarial lens
	PersonaDefense    Persona = "defense"    // optimistic lens
	PersonaTechLead   Persona = "tech-lead"  // pragmatic lens
)

// Personas lists every judge persona. Exactly one Opinion per
// (criterion, persona) pair must exist by the end of StageReview.
var Personas = []Persona{PersonaProsecutor, PersonaDefense, PersonaTechLead}

// TagSecurityConcern marks Evidence carrying a security-relevant negative
// finding. The synthesis engine's security override keys on it.
const TagSecurityConcern = "security-concern"

// Evidence is an immutable forensic record produced by a collector.
// Absence of a finding is itself evidence: Found=false records still exist.
type Evidence struct {
	Criterion  string    `json:"criterion"`
	Source     string    `json:"source"` // collector that produced it
	Goal       string    `json:"goal"`   // what was checked
	Found      bool      `json:"found"`
	Confidence float64   `json:"confidence"` // 0..1
	Location   string    `json:"location"`   // file path, commit hash, page reference
	Content    string    `json:"content,omitempty"`
	Rationale  string    `json:"rationale"`
	Tags       []string  `json:"tags,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ID returns a stable identifier used when opinions cite evidence.
func (e Evidence) ID() string {
	return e.Criterion + "/" + e.Source + "@" + e.Location
}

// HasTag reports whether the evidence carries the given tag.
func (e Evidence) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks the Evidence invariants.
func (e Evidence) Validate() error {
	if e.Criterion == "" {
		return fmt.Errorf("evidence: missing criterion")
	}
	if e.Source == "" {
		return fmt.Errorf("evidence %s: missing source", e.Criterion)
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("evidence %s: confidence %.2f outside [0,1]", e.Criterion, e.Confidence)
	}
	return nil
}

// Opinion is an immutable scored judgment produced by one judge persona for
// one criterion. Degraded opinions come from failure compensation, not from
// genuine evaluation.
type Opinion struct {
	Criterion     string    `json:"criterion"`
	Persona       Persona   `json:"persona"`
	Score         int       `json:"score"` // 1..5
	Rationale     string    `json:"rationale"`
	CitedEvidence []string  `json:"citedEvidence,omitempty"` // Evidence IDs
	Degraded      bool      `json:"degraded"`
	Timestamp     time.Time `json:"timestamp"`
}

// Validate checks the Opinion invariants.
func (o Opinion) Validate() error {
	if o.Criterion == "" {
		return fmt.Errorf("opinion: missing criterion")
	}
	if o.Persona == "" {
		return fmt.Errorf("opinion %s: missing persona", o.Criterion)
	}
	if o.Score < 1 || o.Score > 5 {
		return fmt.Errorf("opinion %s/%s: score %d outside 1..5", o.Criterion, o.Persona, o.Score)
	}
	return nil
}
