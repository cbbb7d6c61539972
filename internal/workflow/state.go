package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Target describes the artifacts under audit.
type Target struct {
	RepoURL    string `json:"repoUrl"`
	ReportPath string `json:"reportPath,omitempty"` // accompanying written report
}

// WorkflowState is the mutable shared state for a single audit run. It is
// mutated only by the scheduler's merge step; task units see immutable
// snapshots. A state is never reused across runs.
type WorkflowState struct {
	RunID   string
	Target  Target
	Started time.Time

	// EvidenceStore maps criterion ID to the evidence collected for it.
	// Populated by StageCollection via union-by-key merging.
	EvidenceStore map[string][]Evidence

	// OpinionPool holds opinions in arrival order. Populated by StageReview
	// via append merging.
	OpinionPool []Opinion

	// Meta holds scalar run-level metadata, overwrite-last-wins. Not safe
	// for anything audit-relevant.
	Meta map[string]string

	// Warnings accumulates non-fatal notes surfaced in the final report.
	Warnings []string
}

// NewWorkflowState creates a fresh state for one audit run.
func NewWorkflowState(target Target) *WorkflowState {
	return &WorkflowState{
		RunID:         uuid.NewString(),
		Target:        target,
		Started:       time.Now(),
		EvidenceStore: make(map[string][]Evidence),
		Meta:          make(map[string]string),
	}
}

// EvidenceFor returns the evidence collected for a criterion.
func (s *WorkflowState) EvidenceFor(criterion string) []Evidence {
	return s.EvidenceStore[criterion]
}

// OpinionsFor returns the opinions for a criterion in arrival order.
func (s *WorkflowState) OpinionsFor(criterion string) []Opinion {
	var out []Opinion
	for _, o := range s.OpinionPool {
		if o.Criterion == criterion {
			out = append(out, o)
		}
	}
	return out
}

// TotalEvidence counts evidence records across all criteria.
func (s *WorkflowState) TotalEvidence() int {
	n := 0
	for _, evs := range s.EvidenceStore {
		n += len(evs)
	}
	return n
}

// Snapshot is the immutable view of state handed to task units at fan-out
// time. No task sees a partial update from a sibling in the same stage.
type Snapshot struct {
	RunID    string
	Target   Target
	Evidence map[string][]Evidence
	Opinions []Opinion
	Meta     map[string]string
}

// Snapshot deep-copies the state. Evidence and Opinion values are immutable
// records, so copying the containers is sufficient isolation.
func (s *WorkflowState) Snapshot() Snapshot {
	ev := make(map[string][]Evidence, len(s.EvidenceStore))
	for k, list := range s.EvidenceStore {
		cp := make([]Evidence, len(list))
		copy(cp, list)
		ev[k] = cp
	}
	ops := make([]Opinion, len(s.OpinionPool))
	copy(ops, s.OpinionPool)
	meta := make(map[string]string, len(s.Meta))
	for k, v := range s.Meta {
		meta[k] = v
	}
	return Snapshot{
		RunID:    s.RunID,
		Target:   s.Target,
		Evidence: ev,
		Opinions: ops,
		Meta:     meta,
	}
}

// EvidenceFor returns the snapshot's evidence for a criterion.
func (sn Snapshot) EvidenceFor(criterion string) []Evidence {
	return sn.Evidence[criterion]
}
