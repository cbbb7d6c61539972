package workflow

import (
	"context"
	"fmt"
	"time"
)

// Phase is the scheduler's state-machine state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseFanOut     Phase = "fan-out"
	PhaseCollecting Phase = "collecting"
	PhaseMerging    Phase = "merging"
	PhaseDone       Phase = "done"
	PhaseAborted    Phase = "aborted"
)

// Options configures a Scheduler.
type Options struct {
	// TaskTimeout is the per-task execution budget. Zero disables it.
	TaskTimeout time.Duration

	// MaxParallel bounds concurrent tasks within a stage. Zero is unbounded.
	MaxParallel int
}

// DefaultOptions returns the scheduler defaults used by the CLI.
func DefaultOptions() Options {
	return Options{TaskTimeout: 2 * time.Minute}
}

// Scheduler drives the fork-join pipeline: for each stage it snapshots the
// state, fans out every registered task unit, waits for all of them to
// resolve, and merges their results before advancing. The merge step is the
// only mutation point of the shared state; the fan-in barrier is the only
// synchronization primitive it needs.
type Scheduler struct {
	opts     Options
	units    map[Stage][]TaskUnit
	merger   *Merger
	fanout   *FanOut
	progress *ProgressReporter
	phase    Phase
}

// NewScheduler creates a Scheduler with no registered units.
func NewScheduler(opts Options) *Scheduler {
	progress := NewProgressReporter()
	return &Scheduler{
		opts:     opts,
		units:    make(map[Stage][]TaskUnit),
		merger:   NewMerger(),
		fanout:   NewFanOut(opts.TaskTimeout, opts.MaxParallel, progress.Emit),
		progress: progress,
		phase:    PhaseIdle,
	}
}

// Register adds a task unit to its declared stage.
func (s *Scheduler) Register(unit TaskUnit) {
	s.units[unit.Stage()] = append(s.units[unit.Stage()], unit)
}

// Phase returns the scheduler's current state-machine state.
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// Progress returns a channel that emits progress events.
func (s *Scheduler) Progress() <-chan ProgressEvent {
	return s.progress.Subscribe()
}

// Close shuts down the progress reporter. Callers should invoke this when
// the scheduler is no longer needed.
func (s *Scheduler) Close() {
	s.progress.Close()
}

// Run executes every stage in order against the given state. The review
// stage's snapshot strictly includes all evidence merged by the end of the
// collection stage. Task failures are absorbed through compensation; only a
// scheduler fault (task panic, merge invariant violation) aborts the run.
func (s *Scheduler) Run(ctx context.Context, state *WorkflowState) error {
	if s.phase != PhaseIdle {
		return fmt.Errorf("scheduler: run already started (phase %s)", s.phase)
	}

	for _, stage := range Stages {
		if err := s.runStage(ctx, stage, state); err != nil {
			s.phase = PhaseAborted
			return fmt.Errorf("scheduler: stage %s: %w", stage, err)
		}
	}

	s.phase = PhaseDone
	return nil
}

// runStage performs one FanOut → Collecting → Merging cycle. Advancement
// requires every unit of the stage to have resolved: the fan-out call does
// not return until each invocation has produced an ok or compensated result.
func (s *Scheduler) runStage(ctx context.Context, stage Stage, state *WorkflowState) error {
	units := s.units[stage]
	if len(units) == 0 {
		return fmt.Errorf("no task units registered")
	}

	s.phase = PhaseFanOut
	snap := state.Snapshot()

	s.phase = PhaseCollecting
	results, err := s.fanout.Run(ctx, stage, units, snap)
	if err != nil {
		return err
	}

	s.phase = PhaseMerging
	for _, res := range results {
		if err := s.merger.Merge(state, res); err != nil {
			return err
		}
	}
	state.Meta["stage:"+stage.String()] = "merged"

	return nil
}
