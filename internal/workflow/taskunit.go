package workflow

import "context"

// TaskUnit wraps one collector or judge. Execute receives the immutable
// snapshot taken at fan-out time and must not mutate shared state; its
// PartialResult is folded in by the Merger. On failure the scheduler calls
// Compensate instead of propagating the error, so the fan-in barrier never
// blocks on a broken task and every criterion keeps a full slate of records.
type TaskUnit interface {
	// Name identifies the unit in progress events and warnings.
	Name() string

	// Stage is the pipeline stage this unit belongs to.
	Stage() Stage

	// Execute performs the unit's work against the snapshot. The context
	// carries the per-task timeout; implementations must honor it.
	Execute(ctx context.Context, snap Snapshot) (*PartialResult, error)

	// Compensate builds the degraded placeholder for a failed or timed-out
	// invocation. It must be cheap, side-effect free, and idempotent.
	Compensate(snap Snapshot, cause error) *CompensatedResult
}
