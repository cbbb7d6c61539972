package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reviewer produces one opinion per criterion present in the snapshot's
// evidence store, recording how much evidence it saw.
func reviewer(persona Persona, seen *sync.Map) *stubUnit {
	return &stubUnit{
		name:  string(persona),
		stage: StageReview,
		execute: func(_ context.Context, snap Snapshot) (*PartialResult, error) {
			total := 0
			for _, evs := range snap.Evidence {
				total += len(evs)
			}
			seen.Store(persona, total)

			p := &PartialResult{}
			for criterion := range snap.Evidence {
				p.Opinions = append(p.Opinions, Opinion{
					Criterion: criterion,
					Persona:   persona,
					Score:     3,
					Rationale: "reviewed",
				})
			}
			return p, nil
		},
	}
}

func newTestScheduler() *Scheduler {
	return NewScheduler(Options{TaskTimeout: time.Second})
}

func TestScheduler_Run_FullPipeline(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	s.Register(collector("repo", "state_management"))
	s.Register(collector("doc", "theoretical_depth"))
	var seen sync.Map
	for _, p := range Personas {
		s.Register(reviewer(p, &seen))
	}

	state := NewWorkflowState(Target{RepoURL: "https://example.com/r.git"})
	require.NoError(t, s.Run(context.Background(), state))

	assert.Equal(t, PhaseDone, s.Phase())
	assert.Equal(t, 2, state.TotalEvidence())
	assert.Len(t, state.OpinionPool, 2*len(Personas),
		"one opinion per (criterion, persona)")
	assert.Equal(t, "merged", state.Meta["stage:collection"])
	assert.Equal(t, "merged", state.Meta["stage:review"])
}

func TestScheduler_ReviewSnapshot_IncludesAllEvidence(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	// Collectors with staggered completion: the review stage must still see
	// evidence from both.
	slow := &stubUnit{
		name:  "repo",
		stage: StageCollection,
		execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
			time.Sleep(50 * time.Millisecond)
			return &PartialResult{Evidence: map[string][]Evidence{
				"state_management": {evidence("state_management", "repo", true)},
			}}, nil
		},
	}
	s.Register(slow)
	s.Register(collector("doc", "theoretical_depth"))

	var seen sync.Map
	for _, p := range Personas {
		s.Register(reviewer(p, &seen))
	}

	state := NewWorkflowState(Target{})
	require.NoError(t, s.Run(context.Background(), state))

	for _, p := range Personas {
		v, ok := seen.Load(p)
		require.True(t, ok)
		assert.Equal(t, 2, v, "persona %s must see the fully merged evidence store", p)
	}
}

func TestScheduler_CompensatedCollector_RunStillCompletes(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	broken := &stubUnit{
		name:  "doc",
		stage: StageCollection,
		execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
			return nil, context.DeadlineExceeded
		},
	}
	s.Register(collector("repo", "state_management"))
	s.Register(broken)
	var seen sync.Map
	for _, p := range Personas {
		s.Register(reviewer(p, &seen))
	}

	state := NewWorkflowState(Target{})
	require.NoError(t, s.Run(context.Background(), state))

	assert.Equal(t, PhaseDone, s.Phase())
	assert.NotEmpty(t, state.Warnings)
	// The compensated placeholder still contributed a Found=false record.
	assert.NotEmpty(t, state.EvidenceFor("doc"))
}

func TestScheduler_DuplicateOpinions_AbortRun(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	s.Register(collector("repo", "state_management"))
	dup := func(name string) *stubUnit {
		return &stubUnit{
			name:  name,
			stage: StageReview,
			execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
				return &PartialResult{Opinions: []Opinion{
					opinion("state_management", PersonaProsecutor, 2),
				}}, nil
			},
		}
	}
	s.Register(dup("j1"))
	s.Register(dup("j2"))

	err := s.Run(context.Background(), NewWorkflowState(Target{}))
	require.Error(t, err)
	assert.Equal(t, PhaseAborted, s.Phase())
	assert.Contains(t, err.Error(), "duplicate opinion")
}

func TestScheduler_PanickingUnit_AbortRun(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	s.Register(&stubUnit{
		name:  "repo",
		stage: StageCollection,
		execute: func(_ context.Context, _ Snapshot) (*PartialResult, error) {
			panic("boom")
		},
	})
	s.Register(reviewer(PersonaProsecutor, &sync.Map{}))

	err := s.Run(context.Background(), NewWorkflowState(Target{}))
	require.Error(t, err)
	assert.Equal(t, PhaseAborted, s.Phase())
}

func TestScheduler_NoUnitsForStage_Error(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	err := s.Run(context.Background(), NewWorkflowState(Target{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task units registered")
}

func TestSnapshot_IsolatedFromLaterMutation(t *testing.T) {
	state := NewWorkflowState(Target{})
	state.EvidenceStore["c1"] = []Evidence{evidence("c1", "repo", true)}

	snap := state.Snapshot()
	state.EvidenceStore["c1"] = append(state.EvidenceStore["c1"], evidence("c1", "doc", false))
	state.OpinionPool = append(state.OpinionPool, opinion("c1", PersonaDefense, 4))

	assert.Len(t, snap.EvidenceFor("c1"), 1)
	assert.Empty(t, snap.Opinions)
}
