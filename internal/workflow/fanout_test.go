package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUnit is a configurable TaskUnit for scheduler and fan-out tests.
type stubUnit struct {
	name    string
	stage   Stage
	execute func(ctx context.Context, snap Snapshot) (*PartialResult, error)
}

func (u *stubUnit) Name() string { return u.name }
func (u *stubUnit) Stage() Stage { return u.stage }

func (u *stubUnit) Execute(ctx context.Context, snap Snapshot) (*PartialResult, error) {
	return u.execute(ctx, snap)
}

func (u *stubUnit) Compensate(_ Snapshot, cause error) *CompensatedResult {
	return &CompensatedResult{
		Task:  u.name,
		Cause: cause.Error(),
		Partial: PartialResult{
			Evidence: map[string][]Evidence{
				u.name: {{
					Criterion:  u.name,
					Source:     u.name,
					Goal:       "compensated placeholder",
					Found:      false,
					Confidence: 0,
					Location:   "n/a",
					Rationale:  cause.Error(),
				}},
			},
		},
	}
}

func collector(name string, criterion string) *stubUnit {
	return &stubUnit{
		name:  name,
		stage: StageCollection,
		execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
			return &PartialResult{
				Evidence: map[string][]Evidence{
					criterion: {evidence(criterion, name, true)},
				},
			}, nil
		},
	}
}

func TestFanOut_AllUnitsSucceed(t *testing.T) {
	units := []TaskUnit{
		collector("repo", "state_management"),
		collector("doc", "theoretical_depth"),
		collector("cross", "report_accuracy"),
	}

	f := NewFanOut(time.Second, 0, nil)
	results, err := f.Run(context.Background(), StageCollection, units, Snapshot{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, res := range results {
		assert.NotNil(t, res.OK)
		assert.False(t, res.IsCompensated())
	}
}

func TestFanOut_FailingUnit_CompensatedSiblingsUnaffected(t *testing.T) {
	broken := &stubUnit{
		name:  "doc",
		stage: StageCollection,
		execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
			return nil, errors.New("report file unreadable")
		},
	}
	units := []TaskUnit{collector("repo", "state_management"), broken}

	f := NewFanOut(time.Second, 0, nil)
	results, err := f.Run(context.Background(), StageCollection, units, Snapshot{})
	require.NoError(t, err, "task-level failure must not fail the fan-out")
	require.Len(t, results, 2)

	byName := make(map[string]Result)
	for _, res := range results {
		byName[res.Task] = res
	}
	assert.False(t, byName["repo"].IsCompensated())
	require.True(t, byName["doc"].IsCompensated())
	assert.Contains(t, byName["doc"].Compensated.Cause, "unreadable")
}

func TestFanOut_Timeout_ProducesCompensatedResult(t *testing.T) {
	slow := &stubUnit{
		name:  "repo",
		stage: StageCollection,
		execute: func(ctx context.Context, _ Snapshot) (*PartialResult, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return &PartialResult{}, nil
			}
		},
	}

	start := time.Now()
	f := NewFanOut(50*time.Millisecond, 0, nil)
	results, err := f.Run(context.Background(), StageCollection, []TaskUnit{slow}, Snapshot{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].IsCompensated())
	assert.Less(t, time.Since(start), 2*time.Second,
		"a timed-out task must not block stage advancement beyond its budget")
}

func TestFanOut_TimeoutIgnoredByUnit_StillCompensated(t *testing.T) {
	// A unit that returns success after its deadline without checking ctx.
	stubborn := &stubUnit{
		name:  "repo",
		stage: StageCollection,
		execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
			time.Sleep(100 * time.Millisecond)
			return &PartialResult{}, nil
		},
	}

	f := NewFanOut(10*time.Millisecond, 0, nil)
	results, err := f.Run(context.Background(), StageCollection, []TaskUnit{stubborn}, Snapshot{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsCompensated())
}

func TestFanOut_UnitNeverReturns_BarrierAdvancesAtDeadline(t *testing.T) {
	// A unit wedged on a channel receive with no ctx handling at all.
	release := make(chan struct{})
	defer close(release)
	wedged := &stubUnit{
		name:  "repo",
		stage: StageCollection,
		execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
			<-release
			return &PartialResult{}, nil
		},
	}

	start := time.Now()
	f := NewFanOut(50*time.Millisecond, 0, nil)
	results, err := f.Run(context.Background(), StageCollection, []TaskUnit{wedged}, Snapshot{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].IsCompensated())
	assert.Less(t, time.Since(start), time.Second,
		"a wedged task must not hold the fan-in barrier past its budget")
}

func TestFanOut_Panic_IsSchedulerFault(t *testing.T) {
	crashing := &stubUnit{
		name:  "repo",
		stage: StageCollection,
		execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
			panic("nil dereference in collector")
		},
	}

	f := NewFanOut(time.Second, 0, nil)
	_, err := f.Run(context.Background(), StageCollection, []TaskUnit{crashing}, Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestFanOut_EmitsProgressEvents(t *testing.T) {
	var events []ProgressEvent
	f := NewFanOut(time.Second, 1, func(ev ProgressEvent) {
		events = append(events, ev)
	})

	_, err := f.Run(context.Background(), StageCollection,
		[]TaskUnit{collector("repo", "state_management")}, Snapshot{})
	require.NoError(t, err)

	var statuses []ProgressStatus
	for _, ev := range events {
		statuses = append(statuses, ev.Status)
	}
	assert.Equal(t, []ProgressStatus{ProgressPending, ProgressWorking, ProgressComplete}, statuses)
}

func TestFanOut_ArrivalOrder_ReflectsCompletion(t *testing.T) {
	mk := func(name string, delay time.Duration) *stubUnit {
		return &stubUnit{
			name:  name,
			stage: StageReview,
			execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
				time.Sleep(delay)
				return &PartialResult{Opinions: []Opinion{opinion("c1", Persona(name), 3)}}, nil
			},
		}
	}

	f := NewFanOut(time.Second, 0, nil)
	results, err := f.Run(context.Background(), StageReview,
		[]TaskUnit{mk("slow", 80*time.Millisecond), mk("fast", 0)}, Snapshot{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "fast", results[0].Task, fmt.Sprintf("got order %s, %s", results[0].Task, results[1].Task))
}
