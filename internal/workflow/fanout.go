package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// FanOut dispatches task units in parallel and collects their tagged results.
// Task-level failures and timeouts are absorbed through compensation and
// never fail the fan-out; only a panic escaping a task unit is escalated as
// a scheduler fault.
type FanOut struct {
	timeout    time.Duration
	limit      int // max concurrent tasks; 0 means unbounded
	onProgress func(ProgressEvent)
}

// NewFanOut creates a FanOut. timeout is the per-task execution budget;
// onProgress is called synchronously from task goroutines and may be nil.
func NewFanOut(timeout time.Duration, limit int, onProgress func(ProgressEvent)) *FanOut {
	return &FanOut{timeout: timeout, limit: limit, onProgress: onProgress}
}

// Run executes every unit against the same snapshot and returns results in
// arrival (completion) order. A unit error or timeout yields that unit's
// compensated result; sibling tasks keep running with their own budgets.
// The returned error is non-nil only for a scheduler fault.
func (f *FanOut) Run(ctx context.Context, stage Stage, units []TaskUnit, snap Snapshot) ([]Result, error) {
	var (
		mu      sync.Mutex
		results []Result
	)

	g := new(errgroup.Group)
	if f.limit > 0 {
		g.SetLimit(f.limit)
	}

	for _, unit := range units {
		f.emit(ProgressEvent{Stage: stage, Task: unit.Name(), Status: ProgressPending})

		g.Go(func() error {
			f.emit(ProgressEvent{Stage: stage, Task: unit.Name(), Status: ProgressWorking})

			res, fault := f.invoke(ctx, unit, snap)
			if fault != nil {
				f.emit(ProgressEvent{
					Stage:   stage,
					Task:    unit.Name(),
					Status:  ProgressFailed,
					Message: fault.Error(),
				})
				return fault
			}

			status := ProgressComplete
			var msg string
			if res.IsCompensated() {
				status = ProgressCompensated
				msg = res.Compensated.Cause
			}
			f.emit(ProgressEvent{Stage: stage, Task: unit.Name(), Status: status, Message: msg})

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("fan-out: stage %s: %w", stage, err)
	}
	return results, nil
}

// invoke runs one unit with its own timeout. The derived context cancels
// only this unit's work; it is not shared with siblings. Execute runs in its
// own goroutine so a unit that never observes its context cannot hold the
// fan-in barrier past the deadline; the abandoned goroutine is the accepted
// cost of keeping the stage moving. A panic inside the unit is recovered and
// surfaced as a fault rather than killing the coordinating process.
func (f *FanOut) invoke(ctx context.Context, unit TaskUnit, snap Snapshot) (Result, error) {
	tctx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	type outcome struct {
		partial *PartialResult
		err     error
		fault   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{fault: fmt.Errorf("task %q panicked: %v", unit.Name(), r)}
			}
		}()
		partial, err := unit.Execute(tctx, snap)
		done <- outcome{partial: partial, err: err}
	}()

	var (
		partial *PartialResult
		err     error
	)
	select {
	case out := <-done:
		if out.fault != nil {
			return Result{}, out.fault
		}
		partial, err = out.partial, out.err
		if err == nil && tctx.Err() != nil {
			// The unit returned after its deadline without reporting it.
			err = tctx.Err()
		}
	case <-tctx.Done():
		// The unit ignored its context. Abandon its goroutine and advance
		// the barrier with a compensated result.
		err = tctx.Err()
	}
	if err != nil {
		comp := unit.Compensate(snap, err)
		if comp == nil {
			comp = &CompensatedResult{Task: unit.Name(), Cause: err.Error()}
		}
		return Result{Task: unit.Name(), Compensated: comp}, nil
	}
	if partial == nil {
		partial = &PartialResult{}
	}
	return Result{Task: unit.Name(), OK: partial}, nil
}

func (f *FanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
