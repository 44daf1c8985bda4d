package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/draft"
)

func accept(context.Context, *booking.Draft) error { return nil }

func requireCategory(_ context.Context, d *booking.Draft) error {
	if d.CategoryStep == nil {
		return booking.FieldErrors{"categoryStep": "Selecione uma categoria."}
	}
	return nil
}

func newEngine(t *testing.T, steps []StepDefinition, opts ...Option) (*Engine, *draft.Store) {
	t.Helper()

	store, _, err := draft.Open(context.Background(), draft.NewMemoryStorage(), "sess", nil)
	require.NoError(t, err)

	e, err := NewEngine(steps, store, opts...)
	require.NoError(t, err)
	return e, store
}

func linearSteps() []StepDefinition {
	return []StepDefinition{
		{Key: booking.StepCategory, Validator: ValidatorFunc(requireCategory)},
		{Key: booking.StepService, Validator: ValidatorFunc(accept)},
		{Key: booking.StepConfirmed, Validator: ValidatorFunc(accept)},
	}
}

func TestNewEngineRejectsBadDefinitions(t *testing.T) {
	store, _, err := draft.Open(context.Background(), draft.NewMemoryStorage(), "x", nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		steps []StepDefinition
	}{
		{"empty", nil},
		{"no validator", []StepDefinition{{Key: booking.StepCategory}}},
		{"duplicate", []StepDefinition{
			{Key: booking.StepCategory, Validator: ValidatorFunc(accept)},
			{Key: booking.StepCategory, Validator: ValidatorFunc(accept)},
		}},
		{"incomplete branch", []StepDefinition{
			{Key: booking.StepClient, Validator: ValidatorFunc(accept), Branch: &Branch{Kind: "x"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.steps, store)
			assert.Error(t, err)
		})
	}
}

func TestAdvanceReachesDoneAfterEveryStep(t *testing.T) {
	ctx := context.Background()
	e, store := newEngine(t, linearSteps())

	require.NoError(t, store.Set(ctx, booking.StepCategory, booking.CategoryStep{CategoryID: 1}))

	for i := 0; i < 2; i++ {
		st, err := e.Advance(ctx)
		require.NoError(t, err)
		assert.Equal(t, PhaseViewing, st.Phase)
		assert.Equal(t, i+1, st.Index)
	}

	st, err := e.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, st.Phase)
	assert.Equal(t, 2, st.Index)

	// done is terminal for advance and retreat
	st, err = e.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, st.Phase)

	st, err = e.Retreat()
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, st.Phase)
}

func TestAdvanceRefusalKeepsIndexAndDraft(t *testing.T) {
	ctx := context.Background()
	e, store := newEngine(t, linearSteps())

	st, err := e.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseViewing, st.Phase)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, "Selecione uma categoria.", st.Errors["categoryStep"])
	assert.Equal(t, booking.Draft{}, store.Snapshot())

	require.NoError(t, store.Set(ctx, booking.StepCategory, booking.CategoryStep{CategoryID: 1}))
	st, err = e.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Index)
	assert.Empty(t, st.Errors)
}

func TestRetreatThenAdvanceReturnsToSameStep(t *testing.T) {
	ctx := context.Background()
	e, store := newEngine(t, linearSteps())
	require.NoError(t, store.Set(ctx, booking.StepCategory, booking.CategoryStep{CategoryID: 1}))

	_, err := e.Advance(ctx)
	require.NoError(t, err)
	before := e.State()

	st, err := e.Retreat()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Index)

	st, err = e.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, st)
}

func TestRetreatSaturatesAtZero(t *testing.T) {
	e, _ := newEngine(t, linearSteps())

	st, err := e.Retreat()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, booking.StepCategory, st.Step)
}

func TestValidatorMutationsAreCommittedBeforeMoving(t *testing.T) {
	ctx := context.Background()

	var seen *booking.CategoryStep
	steps := []StepDefinition{
		{Key: booking.StepCategory, Validator: ValidatorFunc(func(_ context.Context, d *booking.Draft) error {
			d.CategoryStep = &booking.CategoryStep{CategoryID: 7, Name: "Barba"}
			return nil
		})},
		{Key: booking.StepService, Validator: ValidatorFunc(func(_ context.Context, d *booking.Draft) error {
			seen = d.CategoryStep
			return nil
		})},
	}
	e, store := newEngine(t, steps)

	_, err := e.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(7), store.Snapshot().CategoryStep.CategoryID)

	_, err = e.Advance(ctx)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "Barba", seen.Name)
}

func TestRefusedValidatorMutationsAreDiscarded(t *testing.T) {
	ctx := context.Background()
	steps := []StepDefinition{
		{Key: booking.StepCategory, Validator: ValidatorFunc(func(_ context.Context, d *booking.Draft) error {
			d.CategoryStep = &booking.CategoryStep{CategoryID: 7}
			return booking.FieldErrors{"categoryStep": "não"}
		})},
	}
	e, store := newEngine(t, steps)

	_, err := e.Advance(ctx)
	require.NoError(t, err)
	assert.Nil(t, store.Snapshot().CategoryStep)
}

func TestUnexpectedErrorsBecomeFormErrors(t *testing.T) {
	ctx := context.Background()
	steps := []StepDefinition{
		{Key: booking.StepCategory, Validator: ValidatorFunc(func(context.Context, *booking.Draft) error {
			return errors.New("connection reset")
		})},
		{Key: booking.StepService, Validator: ValidatorFunc(func(context.Context, *booking.Draft) error {
			panic("boom")
		})},
	}
	e, _ := newEngine(t, steps)

	st, err := e.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, unexpectedMessage, st.Errors[booking.FormField])
	assert.Equal(t, 0, st.Index)

	e.state.Index = 1
	e.state.Step = booking.StepService

	st, err = e.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, unexpectedMessage, st.Errors[booking.FormField])
	assert.Equal(t, PhaseViewing, st.Phase)
}

func TestBusyGuardWhileValidating(t *testing.T) {
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	steps := []StepDefinition{
		{Key: booking.StepCategory, Validator: ValidatorFunc(func(context.Context, *booking.Draft) error {
			close(started)
			<-release
			return nil
		})},
		{Key: booking.StepService, Validator: ValidatorFunc(accept)},
	}
	e, _ := newEngine(t, steps)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = e.Advance(ctx)
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("validator did not start")
	}

	assert.Equal(t, PhaseSubmitting, e.State().Phase)

	_, err := e.Advance(ctx)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = e.Retreat()
	assert.ErrorIs(t, err, ErrBusy)
	err = e.Edit(ctx, booking.StepCategory, func(*booking.Draft) error { return nil })
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()

	assert.Equal(t, 1, e.State().Index)
}

func branchSteps(calls *int) []StepDefinition {
	return []StepDefinition{
		{Key: booking.StepService, Validator: ValidatorFunc(accept)},
		{
			Key:       booking.StepClient,
			Validator: ValidatorFunc(accept),
			Branch: &Branch{
				Kind: "newClient",
				Predicate: func(d booking.Draft) bool {
					return d.ClientStep == nil || d.ClientStep.NeedsRegistration()
				},
				Validator: ValidatorFunc(func(_ context.Context, d *booking.Draft) error {
					*calls++
					if d.ClientStep == nil || d.ClientStep.Name == "" {
						return booking.FieldErrors{"clientStep.name": "Informe seu nome."}
					}
					d.ClientStep.ClientID = 42
					return nil
				}),
			},
		},
		{Key: booking.StepConfirmed, Validator: ValidatorFunc(accept)},
	}
}

func TestBranchLifecycle(t *testing.T) {
	ctx := context.Background()
	calls := 0
	e, store := newEngine(t, branchSteps(&calls))

	_, err := e.Advance(ctx)
	require.NoError(t, err)

	st, err := e.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseBranching, st.Phase)
	assert.Equal(t, "newClient", st.Branch)
	assert.Equal(t, 1, st.Index)

	_, err = e.Advance(ctx)
	assert.ErrorIs(t, err, ErrBranchPending)

	st, err = e.CompleteBranch(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseBranching, st.Phase)
	assert.Contains(t, st.Errors, "clientStep.name")

	st, err = e.CompleteBranch(ctx, func(d *booking.Draft) {
		d.ClientStep = &booking.ClientStep{Name: "Ana", BirthDay: booking.Int(1), BirthMonth: booking.Int(2)}
	})
	require.NoError(t, err)
	assert.Equal(t, PhaseViewing, st.Phase)
	assert.Equal(t, 2, st.Index)
	assert.Empty(t, st.Branch)
	assert.Equal(t, uint(42), store.Snapshot().ClientStep.ClientID)
	assert.Equal(t, 2, calls)
}

func TestBranchSkippedWhenPredicateFails(t *testing.T) {
	ctx := context.Background()
	calls := 0
	e, store := newEngine(t, branchSteps(&calls))

	require.NoError(t, store.Set(ctx, booking.StepClient, booking.ClientStep{
		ClientID: 1, BirthDay: booking.Int(3), BirthMonth: booking.Int(4),
	}))

	_, err := e.Advance(ctx)
	require.NoError(t, err)
	st, err := e.Advance(ctx)
	require.NoError(t, err)

	assert.Equal(t, PhaseViewing, st.Phase)
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, 0, calls)
}

func TestCancelAndRetreatFromBranch(t *testing.T) {
	ctx := context.Background()
	calls := 0
	e, _ := newEngine(t, branchSteps(&calls))

	_, err := e.CancelBranch()
	assert.ErrorIs(t, err, ErrNoBranch)
	_, err = e.CompleteBranch(ctx, nil)
	assert.ErrorIs(t, err, ErrNoBranch)

	_, _ = e.Advance(ctx)
	st, _ := e.Advance(ctx)
	require.Equal(t, PhaseBranching, st.Phase)

	st, err = e.CancelBranch()
	require.NoError(t, err)
	assert.Equal(t, PhaseViewing, st.Phase)
	assert.Equal(t, 1, st.Index)

	st, _ = e.Advance(ctx)
	require.Equal(t, PhaseBranching, st.Phase)

	st, err = e.Retreat()
	require.NoError(t, err)
	assert.Equal(t, PhaseViewing, st.Phase)
	assert.Equal(t, 0, st.Index)
	assert.Empty(t, st.Branch)
}

func TestEditOnlyOnActiveStep(t *testing.T) {
	ctx := context.Background()
	e, store := newEngine(t, linearSteps())

	err := e.Edit(ctx, booking.StepService, func(*booking.Draft) error { return nil })
	assert.ErrorIs(t, err, ErrNotActive)

	err = e.Edit(ctx, booking.StepCategory, func(d *booking.Draft) error {
		d.CategoryStep = &booking.CategoryStep{CategoryID: 2}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(2), store.Snapshot().CategoryStep.CategoryID)
}

func TestObserverSeesTransitions(t *testing.T) {
	ctx := context.Background()

	var actions []string
	e, store := newEngine(t, linearSteps(), WithObserver(func(ev Event) {
		actions = append(actions, ev.Action)
	}))

	_, _ = e.Advance(ctx)
	require.NoError(t, store.Set(ctx, booking.StepCategory, booking.CategoryStep{CategoryID: 1}))
	_, _ = e.Advance(ctx)
	_, _ = e.Retreat()

	assert.Equal(t, []string{"advance_refused", "advance", "retreat"}, actions)
}

func TestRestart(t *testing.T) {
	ctx := context.Background()
	e, store := newEngine(t, linearSteps())
	require.NoError(t, store.Set(ctx, booking.StepCategory, booking.CategoryStep{CategoryID: 1}))
	_, _ = e.Advance(ctx)

	e.Restart()

	st := e.State()
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, PhaseViewing, st.Phase)
	assert.Len(t, e.Steps(), 3)
}

func TestEditRefusedWhileBranching(t *testing.T) {
	ctx := context.Background()
	calls := 0
	e, store := newEngine(t, branchSteps(&calls))

	_, err := e.Advance(ctx)
	require.NoError(t, err)
	st, err := e.Advance(ctx)
	require.NoError(t, err)
	require.Equal(t, PhaseBranching, st.Phase)

	before := store.Snapshot()
	err = e.Edit(ctx, booking.StepClient, func(d *booking.Draft) error {
		d.ClientStep = &booking.ClientStep{Phone: "12"}
		return nil
	})
	assert.ErrorIs(t, err, ErrBranchPending)
	assert.Equal(t, before, store.Snapshot())

	st, err = e.CancelBranch()
	require.NoError(t, err)
	require.Equal(t, PhaseViewing, st.Phase)
	assert.NoError(t, e.Edit(ctx, booking.StepClient, func(*booking.Draft) error { return nil }))
}
