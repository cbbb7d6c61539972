// Package rubric loads the audit constitution: the ordered list of criteria,
// their tag sets, forensic probes, and the synthesis policy overrides.
package rubric

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Artifact identifies which audit target a criterion examines.
type Artifact string

const (
	ArtifactRepo   Artifact = "repo"
	ArtifactReport Artifact = "report"
)

// Tags recognized by the synthesis engine.
const (
	TagSecurityRelevant     = "security-relevant"
	TagArchitectureRelevant = "architecture-relevant"
)

// Criterion is one named evaluation dimension. The tag set drives synthesis
// rules; the probe name selects the detective check; the patterns feed the
// generic pattern-scan probe.
type Criterion struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	TargetArtifact Artifact `yaml:"targetArtifact"`
	Goal           string   `yaml:"goal"`
	Probe          string   `yaml:"probe,omitempty"`
	SuccessPattern string   `yaml:"successPattern,omitempty"`
	FailurePattern string   `yaml:"failurePattern,omitempty"`
	Tags           []string `yaml:"tags,omitempty"`
	Remediation    string   `yaml:"remediation,omitempty"`
}

// HasTag reports whether the criterion carries the given tag.
func (c Criterion) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Synthesis holds the policy constants consumed by the verdict engine.
// Zero values fall back to the engine defaults.
type Synthesis struct {
	DissentThreshold int     `yaml:"dissentThreshold,omitempty"`
	SecurityCap      int     `yaml:"securityCap,omitempty"`
	NeutralMidpoint  int     `yaml:"neutralMidpoint,omitempty"`
	PragmaticWeight  float64 `yaml:"pragmaticWeight,omitempty"`
}

// Metadata describes the rubric itself.
type Metadata struct {
	Name    string `yaml:"name,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// Rubric is the full constitution for one audit.
type Rubric struct {
	Metadata  Metadata    `yaml:"metadata,omitempty"`
	Criteria  []Criterion `yaml:"criteria"`
	Synthesis Synthesis   `yaml:"synthesis,omitempty"`
}

// Load reads a rubric from a YAML file.
func Load(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rubric: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates rubric YAML.
func Parse(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("rubric: parse: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks structural invariants: at least one criterion, unique IDs,
// a known target artifact per criterion.
func (r *Rubric) Validate() error {
	if len(r.Criteria) == 0 {
		return fmt.Errorf("rubric: no criteria defined")
	}
	seen := make(map[string]bool, len(r.Criteria))
	for _, c := range r.Criteria {
		if c.ID == "" {
			return fmt.Errorf("rubric: criterion with empty id")
		}
		if seen[c.ID] {
			return fmt.Errorf("rubric: duplicate criterion id %q", c.ID)
		}
		seen[c.ID] = true
		switch c.TargetArtifact {
		case ArtifactRepo, ArtifactReport:
		default:
			return fmt.Errorf("rubric: criterion %q: unknown target artifact %q", c.ID, c.TargetArtifact)
		}
	}
	return nil
}

// Get returns the criterion with the given ID, or false.
func (r *Rubric) Get(id string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// ByArtifact returns the criteria targeting the given artifact, in rubric order.
func (r *Rubric) ByArtifact(a Artifact) []Criterion {
	var out []Criterion
	for _, c := range r.Criteria {
		if c.TargetArtifact == a {
			out = append(out, c)
		}
	}
	return out
}
