package workflow

import (
	"fmt"
)

// MergeStrategy names how a state field combines concurrently produced
// partial results.
type MergeStrategy string

const (
	// MergeUnionByKey combines criterion-keyed maps; on key collision the
	// value lists are concatenated. Used for the Evidence Store. Associative
	// and commutative when distinct tasks write distinct criteria.
	MergeUnionByKey MergeStrategy = "union-by-key"

	// MergeAppend adds to an ordered list, order = arrival. Used for the
	// Opinion Pool.
	MergeAppend MergeStrategy = "append"

	// MergeOverwrite is last-writer-wins for scalar run metadata only.
	// Not safe for anything audit-relevant.
	MergeOverwrite MergeStrategy = "overwrite-last"
)

// PartialResult is the output of one task unit, consumed by the Merger.
// Task units never mutate shared state directly.
type PartialResult struct {
	Evidence map[string][]Evidence // merged union-by-key
	Opinions []Opinion             // merged append, arrival order
	Meta     map[string]string     // merged overwrite-last
	Warnings []string              // merged append
}

// CompensatedResult is the degraded placeholder substituted for a failed or
// timed-out task. It carries a full PartialResult so that every criterion
// still receives its slate of records.
type CompensatedResult struct {
	Task    string
	Cause   string
	Partial PartialResult
}

// Result is the tagged outcome of one task unit invocation: exactly one of
// OK or Compensated is non-nil.
type Result struct {
	Task        string
	OK          *PartialResult
	Compensated *CompensatedResult
}

// Partial returns the payload to merge regardless of which tag is set.
func (r Result) Partial() *PartialResult {
	if r.OK != nil {
		return r.OK
	}
	if r.Compensated != nil {
		return &r.Compensated.Partial
	}
	return nil
}

// IsCompensated reports whether the result came from failure compensation.
func (r Result) IsCompensated() bool {
	return r.Compensated != nil
}

// Merger folds partial results into a WorkflowState. It is invoked only from
// the scheduler's merge step, single-threaded behind the fan-in barrier, so
// it needs no locking of its own.
type Merger struct{}

// NewMerger creates a Merger.
func NewMerger() *Merger {
	return &Merger{}
}

// Merge applies one result to the state. Evidence merges union-by-key,
// opinions append in arrival order, metadata is overwrite-last. A duplicate
// (criterion, persona) opinion or an invariant-violating record is a
// scheduler bug and returns an error, which aborts the run.
func (m *Merger) Merge(state *WorkflowState, res Result) error {
	p := res.Partial()
	if p == nil {
		return fmt.Errorf("merge: task %q produced neither ok nor compensated result", res.Task)
	}

	for criterion, evs := range p.Evidence {
		for _, ev := range evs {
			if err := ev.Validate(); err != nil {
				return fmt.Errorf("merge: task %q: %w", res.Task, err)
			}
		}
		state.EvidenceStore[criterion] = append(state.EvidenceStore[criterion], evs...)
	}

	seen := make(map[string]bool, len(state.OpinionPool))
	for _, o := range state.OpinionPool {
		seen[opinionKey(o)] = true
	}
	for _, o := range p.Opinions {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("merge: task %q: %w", res.Task, err)
		}
		key := opinionKey(o)
		if seen[key] {
			return fmt.Errorf("merge: task %q: duplicate opinion for %s", res.Task, key)
		}
		seen[key] = true
		state.OpinionPool = append(state.OpinionPool, o)
	}

	for k, v := range p.Meta {
		state.Meta[k] = v
	}

	state.Warnings = append(state.Warnings, p.Warnings...)
	if res.Compensated != nil {
		state.Warnings = append(state.Warnings,
			fmt.Sprintf("task %q compensated: %s", res.Compensated.Task, res.Compensated.Cause))
	}

	return nil
}

func opinionKey(o Opinion) string {
	return o.Criterion + "/" + string(o.Persona)
}
