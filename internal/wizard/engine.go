// Package wizard drives a booking draft through an ordered list of steps.
//
// The engine is a small state machine:
//
//	Viewing(i)    --advance ok-->     Viewing(i+1) | Branching(i) | Done
//	Viewing(i)    --advance refused-> Viewing(i) with field errors
//	Branching(i)  --complete ok-->    Viewing(i+1) | Done
//	any           --retreat-->        Viewing(max(i-1, 0))
//
// Validators run in the Submitting phase without holding the engine lock;
// every other control is refused until they return.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/draft"
)

var (
	ErrBusy          = errors.New("a step is being submitted")
	ErrBranchPending = errors.New("step is waiting for its branch to complete")
	ErrNoBranch      = errors.New("step is not branching")
	ErrNotActive     = errors.New("step is not the active step")
	ErrFinished      = errors.New("flow already finished")
)

const unexpectedMessage = "Não foi possível validar esta etapa. Tente novamente."

type Phase string

const (
	PhaseViewing    Phase = "viewing"
	PhaseBranching  Phase = "branching"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
)

type State struct {
	Phase  Phase               `json:"phase"`
	Index  int                 `json:"index"`
	Step   booking.StepKey     `json:"step"`
	Branch string              `json:"branch,omitempty"`
	Errors booking.FieldErrors `json:"errors,omitempty"`
}

// Event describes one transition, or one refused attempt (From == To with
// errors set).
type Event struct {
	Action string
	From   State
	To     State
}

type Observer func(Event)

type Option func(*Engine)

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

type Engine struct {
	steps     []StepDefinition
	store     *draft.Store
	log       *zap.Logger
	observers []Observer

	mu     sync.Mutex
	state  State
	resume Phase
}

func NewEngine(steps []StepDefinition, store *draft.Store, opts ...Option) (*Engine, error) {
	if len(steps) == 0 {
		return nil, errors.New("wizard: no steps")
	}

	seen := make(map[booking.StepKey]bool, len(steps))
	for i, s := range steps {
		if s.Validator == nil {
			return nil, fmt.Errorf("wizard: step %d (%s) has no validator", i, s.Key)
		}
		if seen[s.Key] {
			return nil, fmt.Errorf("wizard: duplicate step %s", s.Key)
		}
		if s.Branch != nil && (s.Branch.Predicate == nil || s.Branch.Validator == nil) {
			return nil, fmt.Errorf("wizard: step %s has an incomplete branch", s.Key)
		}
		seen[s.Key] = true
	}

	e := &Engine{
		steps: steps,
		store: store,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.state = State{Phase: PhaseViewing, Step: steps[0].Key}
	return e, nil
}

func (e *Engine) Steps() []StepInfo {
	out := make([]StepInfo, 0, len(e.steps))
	for _, s := range e.steps {
		out = append(out, StepInfo{Key: s.Key, Label: s.Label})
	}
	return out
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshot()
}

// Advance validates the active step and, when it passes, commits the draft
// and moves on or enters the step's branch.
func (e *Engine) Advance(ctx context.Context) (State, error) {
	e.mu.Lock()

	switch e.state.Phase {
	case PhaseSubmitting:
		defer e.mu.Unlock()
		return e.snapshot(), ErrBusy
	case PhaseDone:
		defer e.mu.Unlock()
		return e.snapshot(), nil
	case PhaseBranching:
		defer e.mu.Unlock()
		return e.snapshot(), ErrBranchPending
	}

	step := e.steps[e.state.Index]
	from := e.begin(PhaseViewing)
	e.mu.Unlock()

	work := e.store.Snapshot()
	fe := e.run(ctx, step.Key, step.Validator, &work)

	e.mu.Lock()
	defer e.mu.Unlock()

	if fe != nil {
		return e.refuse(from, "advance", fe), nil
	}

	// commit before the index moves so later steps see upstream data
	e.store.Replace(ctx, work)

	if step.Branch != nil && step.Branch.Predicate(e.store.Snapshot()) {
		e.state.Phase = PhaseBranching
		e.state.Branch = step.Branch.Kind
		e.emit("branch", from)
		return e.snapshot(), nil
	}

	e.forward()
	e.emit("advance", from)
	return e.snapshot(), nil
}

// CompleteBranch is the completion handler of the active branch. patch is
// applied to the working draft before the branch validator runs; nothing is
// committed unless validation passes.
func (e *Engine) CompleteBranch(ctx context.Context, patch func(d *booking.Draft)) (State, error) {
	e.mu.Lock()

	switch e.state.Phase {
	case PhaseSubmitting:
		defer e.mu.Unlock()
		return e.snapshot(), ErrBusy
	case PhaseBranching:
	default:
		defer e.mu.Unlock()
		return e.snapshot(), ErrNoBranch
	}

	step := e.steps[e.state.Index]
	from := e.begin(PhaseBranching)
	e.mu.Unlock()

	work := e.store.Snapshot()
	if patch != nil {
		patch(&work)
	}
	fe := e.run(ctx, step.Key, step.Branch.Validator, &work)

	e.mu.Lock()
	defer e.mu.Unlock()

	if fe != nil {
		return e.refuse(from, "branch_complete", fe), nil
	}

	e.store.Replace(ctx, work)
	e.forward()
	e.emit("branch_complete", from)
	return e.snapshot(), nil
}

// CancelBranch leaves the branch and shows the step's default content again.
func (e *Engine) CancelBranch() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Phase {
	case PhaseSubmitting:
		return e.snapshot(), ErrBusy
	case PhaseBranching:
	default:
		return e.snapshot(), ErrNoBranch
	}

	from := e.snapshot()
	e.state.Phase = PhaseViewing
	e.state.Branch = ""
	e.state.Errors = nil
	e.emit("branch_cancel", from)
	return e.snapshot(), nil
}

// Retreat moves one step back without validating.
func (e *Engine) Retreat() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Phase {
	case PhaseSubmitting:
		return e.snapshot(), ErrBusy
	case PhaseDone:
		return e.snapshot(), nil
	}

	from := e.snapshot()
	if e.state.Index > 0 {
		e.state.Index--
	}
	e.state.Phase = PhaseViewing
	e.state.Branch = ""
	e.state.Errors = nil
	e.state.Step = e.steps[e.state.Index].Key
	e.emit("retreat", from)
	return e.snapshot(), nil
}

// Edit applies a field-level write to the active step's slice. Writes are
// refused while a validator is in flight, while the step waits for its
// branch (branch input only arrives through CompleteBranch) and once the
// flow is done.
func (e *Engine) Edit(ctx context.Context, key booking.StepKey, fn func(d *booking.Draft) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Phase {
	case PhaseSubmitting:
		return ErrBusy
	case PhaseBranching:
		return ErrBranchPending
	case PhaseDone:
		return ErrFinished
	}

	if e.steps[e.state.Index].Key != key {
		return fmt.Errorf("%s: %w", key, ErrNotActive)
	}

	return e.store.Update(ctx, fn)
}

// Restart puts the engine back on the first step.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = State{Phase: PhaseViewing, Step: e.steps[0].Key}
}

func (e *Engine) begin(resume Phase) State {
	from := e.snapshot()
	e.resume = resume
	e.state.Phase = PhaseSubmitting
	e.state.Errors = nil
	return from
}

func (e *Engine) refuse(from State, action string, fe booking.FieldErrors) State {
	e.state.Phase = e.resume
	e.state.Errors = fe
	e.emit(action+"_refused", from)
	return e.snapshot()
}

func (e *Engine) forward() {
	e.state.Branch = ""
	e.state.Errors = nil

	if e.state.Index >= len(e.steps)-1 {
		e.state.Phase = PhaseDone
		return
	}

	e.state.Index++
	e.state.Phase = PhaseViewing
	e.state.Step = e.steps[e.state.Index].Key
}

// run keeps validator failures inside the engine: field errors pass through,
// anything else becomes a form-level error.
func (e *Engine) run(ctx context.Context, key booking.StepKey, v Validator, d *booking.Draft) (fe booking.FieldErrors) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("step validator panicked",
				zap.String("step", string(key)),
				zap.Any("panic", r),
			)
			fe = booking.FieldErrors{booking.FormField: unexpectedMessage}
		}
	}()

	err := v.Validate(ctx, d)
	if err == nil {
		return nil
	}

	if errs, ok := booking.AsFieldErrors(err); ok && len(errs) > 0 {
		return errs
	}

	e.log.Warn("step validator failed",
		zap.String("step", string(key)),
		zap.Error(err),
	)
	return booking.FieldErrors{booking.FormField: unexpectedMessage}
}

func (e *Engine) emit(action string, from State) {
	ev := Event{Action: action, From: from, To: e.snapshot()}
	for _, o := range e.observers {
		o(ev)
	}
}

func (e *Engine) snapshot() State {
	s := e.state
	if e.state.Errors != nil {
		s.Errors = make(booking.FieldErrors, len(e.state.Errors))
		for k, v := range e.state.Errors {
			s.Errors[k] = v
		}
	}
	return s
}
