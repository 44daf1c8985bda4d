// Package flow assembles the booking steps into a wizard and exposes one
// booking session as a Flow: field writes, date and time selection,
// advance/retreat and the new-client branch.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/booking-flow/internal/audit"
	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/draft"
	"github.com/BruksfildServices01/booking-flow/internal/resolver"
	"github.com/BruksfildServices01/booking-flow/internal/wizard"
)

var (
	// ErrEntryRejected aborts a flow entered with a client id that does not
	// resolve; callers send the user back to the public booking page.
	ErrEntryRejected = errors.New("flow entry rejected")
	ErrDerivedStep   = errors.New("step is written through its own operations")
)

type Auditor interface {
	Dispatch(ev audit.Event)
}

// Deps are the collaborators of one barbershop's flows.
type Deps struct {
	BarbershopID   uint
	ProfessionalID uint

	Verifier     booking.PhoneVerifier
	Directory    booking.ClientDirectory
	Availability booking.Availability
	WorkingDays  booking.WorkingDayCatalog
	Booker       booking.Booker

	Audit    Auditor
	Observer wizard.Observer
	Log      *zap.Logger
}

type EnterOptions struct {
	Kind     Kind
	ClientID uint
}

type View struct {
	SessionID string                 `json:"sessionId"`
	Kind      Kind                   `json:"kind"`
	State     wizard.State           `json:"state"`
	Steps     []wizard.StepInfo      `json:"steps"`
	Draft     booking.Draft          `json:"draft"`
	Receipt   *booking.ConfirmedStep `json:"receipt,omitempty"`
}

type Flow struct {
	id     string
	kind   Kind
	deps   Deps
	log    *zap.Logger
	store  *draft.Store
	engine *wizard.Engine
	slots  *resolver.Slots

	verified verifiedPhone

	mu           sync.Mutex
	bounds       resolver.DateBounds
	boundsLoaded bool
	receipt      *booking.ConfirmedStep
}

// Enter opens the flow of a session. Field values persisted under the
// session are restored; the step index always starts at the first step.
func Enter(
	ctx context.Context,
	deps Deps,
	storage draft.Storage,
	sessionID string,
	opts EnterOptions,
) (f *Flow, restored bool, err error) {

	if opts.Kind == "" {
		opts.Kind = KindPublic
	}

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("session", sessionID), zap.String("flow", string(opts.Kind)))

	store, restored, err := draft.Open(ctx, storage, sessionID, log)
	if err != nil {
		return nil, false, err
	}

	store.Watch(resolver.DeriveDuration, booking.StepService, booking.StepServiceAdd)
	if opts.Kind == KindPublic {
		store.Watch(resolver.DeriveConfirmation, booking.StepClient)
	}

	f = &Flow{
		id:    sessionID,
		kind:  opts.Kind,
		deps:  deps,
		log:   log,
		store: store,
		slots: resolver.NewSlots(deps.Availability),
	}

	if opts.Kind == KindClient {
		if err := f.prefillClient(ctx, opts.ClientID); err != nil {
			return nil, false, err
		}
	}

	engineOpts := []wizard.Option{wizard.WithLogger(log)}
	if deps.Observer != nil {
		engineOpts = append(engineOpts, wizard.WithObserver(deps.Observer))
	}

	f.engine, err = wizard.NewEngine(f.definitions(), store, engineOpts...)
	if err != nil {
		return nil, false, err
	}

	f.WorkingDays(ctx)

	f.dispatch("booking_flow_entered", map[string]any{
		"session":  sessionID,
		"kind":     opts.Kind,
		"restored": restored,
	})

	return f, restored, nil
}

func (f *Flow) prefillClient(ctx context.Context, clientID uint) error {
	if clientID == 0 {
		return ErrEntryRejected
	}

	client, err := f.deps.Directory.Get(ctx, clientID)
	if err != nil {
		f.log.Info("client entry rejected", zap.Uint("client_id", clientID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrEntryRejected, err)
	}

	return f.store.Update(ctx, func(d *booking.Draft) error {
		if d.ConfirmedStep == nil {
			d.ConfirmedStep = &booking.ConfirmedStep{}
		}
		d.ConfirmedStep.ClientID = client.ID
		d.ConfirmedStep.ClientName = client.Name
		return nil
	})
}

func (f *Flow) ID() string { return f.id }

func (f *Flow) Kind() Kind { return f.kind }

func (f *Flow) View() View {
	f.mu.Lock()
	receipt := f.receipt
	f.mu.Unlock()

	return View{
		SessionID: f.id,
		Kind:      f.kind,
		State:     f.engine.State(),
		Steps:     f.engine.Steps(),
		Draft:     f.store.Snapshot(),
		Receipt:   receipt,
	}
}

// ======================================================
// FIELD WRITES
// ======================================================

// Write replaces the slice of the active step. The date/time step is
// written with SelectDate and SelectTime; on the confirmation step only the
// notes are taken from value.
func (f *Flow) Write(ctx context.Context, key booking.StepKey, value any) error {
	if key == booking.StepDayHour {
		return fmt.Errorf("%s: %w", key, ErrDerivedStep)
	}

	return f.engine.Edit(ctx, key, func(d *booking.Draft) error {
		if key != booking.StepConfirmed {
			return draft.Assign(d, key, value)
		}

		var notes string
		switch v := value.(type) {
		case booking.ConfirmedStep:
			notes = v.Notes
		case *booking.ConfirmedStep:
			if v != nil {
				notes = v.Notes
			}
		default:
			return draft.Assign(d, key, value)
		}

		if d.ConfirmedStep == nil {
			d.ConfirmedStep = &booking.ConfirmedStep{}
		}
		d.ConfirmedStep.Notes = notes
		return nil
	})
}

// SelectDate sets the date, always clearing the chosen time, and resolves
// the slots offered for it.
func (f *Flow) SelectDate(ctx context.Context, date string) ([]booking.TimeSlot, error) {
	if !f.WorkingDays(ctx).Allows(date) {
		return nil, booking.FieldErrors{"dayHourStep.date": MsgDateUnavailable}
	}

	var gen uint64
	err := f.engine.Edit(ctx, booking.StepDayHour, func(d *booking.Draft) error {
		minutes := resolver.TotalDuration(booking.ServiceSelection(*d))
		if minutes <= 0 {
			return booking.FieldErrors{string(booking.StepDayHour): MsgNoServices}
		}

		if d.DayHourStep == nil {
			d.DayHourStep = &booking.DayHourStep{}
		}
		d.DayHourStep.Date = date
		d.DayHourStep.StartTime = nil
		d.DayHourStep.DurationMinutes = minutes

		// last statement: the write cannot fail after the query is reserved
		gen = f.slots.Begin(f.query(date, minutes))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return f.slots.Await(ctx, gen)
}

// SelectTime picks one of the offsets offered for the selected date.
func (f *Flow) SelectTime(ctx context.Context, total int) error {
	return f.engine.Edit(ctx, booking.StepDayHour, func(d *booking.Draft) error {
		if d.DayHourStep == nil || d.DayHourStep.Date == "" {
			return booking.FieldErrors{"dayHourStep.date": MsgSelectDate}
		}

		q := f.query(d.DayHourStep.Date, d.DayHourStep.DurationMinutes)
		if !f.slots.Offers(q, total) {
			return booking.FieldErrors{"dayHourStep.startTime": MsgTimeUnavailable}
		}

		d.DayHourStep.StartTime = booking.Int(total)
		return nil
	})
}

// Slots returns the slots of the selected date, resolving them when the
// cached answer is for another query.
func (f *Flow) Slots(ctx context.Context) ([]booking.TimeSlot, error) {
	d := f.store.Snapshot()
	if d.DayHourStep == nil || d.DayHourStep.Date == "" {
		return []booking.TimeSlot{}, nil
	}

	want := f.query(d.DayHourStep.Date, d.DayHourStep.DurationMinutes)
	if q, slots, ok := f.slots.Current(); ok && q == want {
		return slots, nil
	}
	return f.slots.Resolve(ctx, want)
}

// WorkingDays returns the date bounds, loading the working-day catalog on
// first use. The catalog is fetched without holding the flow lock.
func (f *Flow) WorkingDays(ctx context.Context) resolver.DateBounds {
	f.mu.Lock()
	if f.boundsLoaded {
		defer f.mu.Unlock()
		return f.bounds
	}
	f.mu.Unlock()

	days, err := f.deps.WorkingDays.List(ctx)
	if err != nil {
		f.log.Warn("working days unavailable", zap.Error(err))
		return resolver.Bounds(nil)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.boundsLoaded {
		f.bounds = resolver.Bounds(days)
		f.boundsLoaded = true
	}
	return f.bounds
}

func (f *Flow) BoundsLoaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.boundsLoaded
}

// ======================================================
// NAVIGATION
// ======================================================

// Advance and Retreat wait for a pending slot query: the date/time step is
// not left while its offered times are unknown.
func (f *Flow) Advance(ctx context.Context) (View, error) {
	if f.slots.Pending() {
		return f.View(), wizard.ErrBusy
	}

	st, err := f.engine.Advance(ctx)
	if err != nil {
		return f.View(), err
	}

	if st.Phase == wizard.PhaseDone {
		f.finish(ctx)
	}
	return f.View(), nil
}

func (f *Flow) Retreat() (View, error) {
	if f.slots.Pending() {
		return f.View(), wizard.ErrBusy
	}

	_, err := f.engine.Retreat()
	return f.View(), err
}

// CompleteNewClient submits the new-client form of the identification
// branch.
func (f *Flow) CompleteNewClient(ctx context.Context, in booking.NewClient) (View, error) {
	st, err := f.engine.CompleteBranch(ctx, func(d *booking.Draft) {
		if d.ClientStep == nil {
			d.ClientStep = &booking.ClientStep{}
		}
		d.ClientStep.Name = in.Name
		d.ClientStep.BirthDay = in.BirthDay
		d.ClientStep.BirthMonth = in.BirthMonth
	})
	if err != nil {
		return f.View(), err
	}

	if len(st.Errors) == 0 {
		f.dispatch("client_registered", map[string]any{"session": f.id})
	}
	if st.Phase == wizard.PhaseDone {
		f.finish(ctx)
	}
	return f.View(), nil
}

func (f *Flow) CancelBranch() (View, error) {
	_, err := f.engine.CancelBranch()
	return f.View(), err
}

// Reset drops the draft and starts over.
func (f *Flow) Reset(ctx context.Context) View {
	f.store.Reset(ctx)
	f.slots.Invalidate()
	f.verified.set("")
	f.engine.Restart()

	f.mu.Lock()
	f.receipt = nil
	f.mu.Unlock()

	return f.View()
}

// finish keeps the confirmation as the receipt and clears the draft.
func (f *Flow) finish(ctx context.Context) {
	d := f.store.Snapshot()

	f.mu.Lock()
	if f.receipt != nil {
		f.mu.Unlock()
		return
	}
	f.receipt = d.ConfirmedStep
	f.mu.Unlock()

	f.store.Reset(ctx)
	f.slots.Invalidate()

	var appointmentID uint
	if d.ConfirmedStep != nil {
		appointmentID = d.ConfirmedStep.AppointmentID
	}
	f.log.Info("booking confirmed", zap.Uint("appointment_id", appointmentID))
	f.dispatch("booking_confirmed", map[string]any{
		"session":        f.id,
		"appointment_id": appointmentID,
	})
}

func (f *Flow) query(date string, minutes int) booking.FreeTimeQuery {
	return booking.FreeTimeQuery{
		Date:            date,
		ProfessionalID:  f.deps.ProfessionalID,
		RequiredMinutes: minutes,
	}
}

func (f *Flow) dispatch(action string, meta map[string]any) {
	if f.deps.Audit == nil {
		return
	}
	f.deps.Audit.Dispatch(audit.Event{
		BarbershopID: f.deps.BarbershopID,
		Action:       action,
		Entity:       "booking_flow",
		Metadata:     meta,
	})
}
