package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
)

// ======================================================
// DURATION
// ======================================================

func TestTotalDuration(t *testing.T) {
	services := []booking.ServiceItem{
		{ID: 1, DurationMinutes: 30},
		{ID: 2, DurationMinutes: 45},
		{ID: 3, DurationMinutes: 20},
	}

	assert.Equal(t, 95, TotalDuration(services))
	assert.Equal(t, 0, TotalDuration(nil))
}

func TestDeriveDurationClearsStartOnChange(t *testing.T) {
	d := booking.Draft{
		ServiceStep:    &booking.ServiceStep{Service: booking.ServiceItem{ID: 1, DurationMinutes: 30}},
		ServiceAddStep: []booking.ServiceItem{{ID: 2, DurationMinutes: 45}, {ID: 3, DurationMinutes: 20}},
	}

	DeriveDuration(&d)
	require.NotNil(t, d.DayHourStep)
	assert.Equal(t, 95, d.DayHourStep.DurationMinutes)

	d.DayHourStep.Date = "2030-05-10"
	d.DayHourStep.StartTime = booking.Int(600)

	DeriveDuration(&d)
	assert.Equal(t, 600, *d.DayHourStep.StartTime, "same duration keeps the time")

	d.ServiceAddStep = d.ServiceAddStep[:1]
	DeriveDuration(&d)
	assert.Equal(t, 75, d.DayHourStep.DurationMinutes)
	assert.Nil(t, d.DayHourStep.StartTime)
	assert.Equal(t, "2030-05-10", d.DayHourStep.Date)
}

func TestDeriveDurationWithoutServices(t *testing.T) {
	var d booking.Draft
	DeriveDuration(&d)
	assert.Nil(t, d.DayHourStep)
}

// ======================================================
// CONFIRMATION
// ======================================================

func TestDeriveConfirmation(t *testing.T) {
	d := booking.Draft{
		ClientStep:    &booking.ClientStep{ClientID: 5, Name: "Ana"},
		ConfirmedStep: &booking.ConfirmedStep{Notes: "sem máquina"},
	}

	DeriveConfirmation(&d)
	assert.Equal(t, booking.ConfirmedStep{ClientID: 5, ClientName: "Ana", Notes: "sem máquina"}, *d.ConfirmedStep)

	d.ClientStep = &booking.ClientStep{Phone: "5511987654321"}
	DeriveConfirmation(&d)
	assert.Equal(t, uint(0), d.ConfirmedStep.ClientID)
	assert.Empty(t, d.ConfirmedStep.ClientName)
	assert.Equal(t, "sem máquina", d.ConfirmedStep.Notes)
}

// ======================================================
// BOUNDS
// ======================================================

func TestBounds(t *testing.T) {
	b := Bounds([]booking.WorkingDay{
		{Date: "2030-01-03"},
		{Date: "2030-01-01"},
		{Date: "2030-01-02", IsClosed: true},
		{Date: "garbage"},
		{Date: "2030-01-05", IsClosed: true},
	})

	assert.Equal(t, "2030-01-01", b.Min)
	assert.Equal(t, "2030-01-05", b.Max)
	assert.Equal(t, []string{"2030-01-02", "2030-01-05"}, b.Closed)

	assert.True(t, b.Allows("2030-01-01"))
	assert.True(t, b.Allows("2030-01-04"))
	assert.False(t, b.Allows("2030-01-02"))
	assert.False(t, b.Allows("2029-12-31"))
	assert.False(t, b.Allows("2030-01-06"))
	assert.False(t, b.Allows("01/01/2030"))
}

func TestBoundsEmpty(t *testing.T) {
	b := Bounds(nil)

	assert.Equal(t, []string{}, b.Closed)
	assert.False(t, b.Allows("2030-01-01"))
}

// ======================================================
// SLOTS
// ======================================================

type gatedSource struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	seen  []booking.FreeTimeQuery
	slots map[string][]booking.TimeSlot
	err   error
}

func (s *gatedSource) GetFreeTime(ctx context.Context, q booking.FreeTimeQuery) ([]booking.TimeSlot, error) {
	s.mu.Lock()
	s.seen = append(s.seen, q)
	gate := s.gates[q.Date]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.slots[q.Date], nil
}

func TestSlotsLastInputWins(t *testing.T) {
	src := &gatedSource{
		gates: map[string]chan struct{}{"2030-01-01": make(chan struct{})},
		slots: map[string][]booking.TimeSlot{
			"2030-01-01": {{Display: "09:00", Total: 540}},
			"2030-01-02": {{Display: "10:00", Total: 600}},
		},
	}
	s := NewSlots(src)

	older := booking.FreeTimeQuery{Date: "2030-01-01", RequiredMinutes: 30}
	newer := booking.FreeTimeQuery{Date: "2030-01-02", RequiredMinutes: 30}

	done := make(chan error, 1)
	go func() {
		_, err := s.Resolve(context.Background(), older)
		done <- err
	}()

	// wait until the older query reached the source
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.seen) == 1
	}, timeout, tick)

	got, err := s.Resolve(context.Background(), newer)
	require.NoError(t, err)
	assert.Equal(t, []booking.TimeSlot{{Display: "10:00", Total: 600}}, got)

	close(src.gates["2030-01-01"])
	assert.ErrorIs(t, <-done, ErrSuperseded)

	q, slots, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, newer, q)
	assert.Equal(t, got, slots)
	assert.True(t, s.Offers(newer, 600))
	assert.False(t, s.Offers(older, 540))
}

func TestSlotsEmptyIsValid(t *testing.T) {
	s := NewSlots(&gatedSource{})
	q := booking.FreeTimeQuery{Date: "2030-01-01", RequiredMinutes: 30}

	got, err := s.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []booking.TimeSlot{}, got)

	_, _, ok := s.Current()
	assert.True(t, ok)
}

func TestSlotsFailureAndInvalidate(t *testing.T) {
	src := &gatedSource{err: errors.New("unavailable")}
	s := NewSlots(src)
	q := booking.FreeTimeQuery{Date: "2030-01-01", RequiredMinutes: 30}

	_, err := s.Resolve(context.Background(), q)
	require.Error(t, err)
	_, _, ok := s.Current()
	assert.False(t, ok)

	src.err = nil
	src.slots = map[string][]booking.TimeSlot{"2030-01-01": {{Display: "08:00", Total: 480}}}
	_, err = s.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, s.Offers(q, 480))

	s.Invalidate()
	assert.False(t, s.Offers(q, 480))
}

func TestSlotsFollowReservationOrder(t *testing.T) {
	src := &gatedSource{slots: map[string][]booking.TimeSlot{
		"2030-01-01": {{Display: "09:00", Total: 540}},
		"2030-01-02": {{Display: "10:00", Total: 600}},
	}}
	s := NewSlots(src)

	a := booking.FreeTimeQuery{Date: "2030-01-01", RequiredMinutes: 30}
	b := booking.FreeTimeQuery{Date: "2030-01-02", RequiredMinutes: 30}

	genA := s.Begin(a)
	genB := s.Begin(b)
	assert.True(t, s.Pending())

	got, err := s.Await(context.Background(), genB)
	require.NoError(t, err)
	assert.Equal(t, []booking.TimeSlot{{Display: "10:00", Total: 600}}, got)
	assert.False(t, s.Pending())

	// the older reservation answers last and must not replace b
	_, err = s.Await(context.Background(), genA)
	assert.ErrorIs(t, err, ErrSuperseded)

	q, _, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, b, q)
	assert.True(t, s.Offers(b, 600))
	assert.Equal(t, []booking.FreeTimeQuery{b}, src.seen)
}

func TestSlotsPendingUntilAnswered(t *testing.T) {
	src := &gatedSource{gates: map[string]chan struct{}{"2030-01-01": make(chan struct{})}}
	s := NewSlots(src)
	q := booking.FreeTimeQuery{Date: "2030-01-01", RequiredMinutes: 30}

	done := make(chan error, 1)
	go func() {
		_, err := s.Resolve(context.Background(), q)
		done <- err
	}()

	require.Eventually(t, s.Pending, timeout, tick)
	close(src.gates["2030-01-01"])
	require.NoError(t, <-done)
	assert.False(t, s.Pending())

	s.Begin(q)
	s.Invalidate()
	assert.False(t, s.Pending())
}
