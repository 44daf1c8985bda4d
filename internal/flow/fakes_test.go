package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/BruksfildServices01/booking-flow/internal/audit"
	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
)

type fakeVerifier struct {
	err   error
	calls int
}

func (v *fakeVerifier) Verify(context.Context, string) error {
	v.calls++
	return v.err
}

type fakeDirectory struct {
	mu         sync.Mutex
	byPhone    map[string]*booking.ClientRecord
	byID       map[uint]*booking.ClientRecord
	lookupErr  error
	registered []booking.NewClient
}

func newFakeDirectory(clients ...*booking.ClientRecord) *fakeDirectory {
	d := &fakeDirectory{
		byPhone: map[string]*booking.ClientRecord{},
		byID:    map[uint]*booking.ClientRecord{},
	}
	for _, c := range clients {
		d.byPhone[c.Phone] = c
		d.byID[c.ID] = c
	}
	return d
}

func (d *fakeDirectory) GetByPhone(_ context.Context, phone string) (*booking.ClientRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	c, ok := d.byPhone[phone]
	if !ok {
		return nil, booking.ErrClientNotFound
	}
	return c, nil
}

func (d *fakeDirectory) Get(_ context.Context, id uint) (*booking.ClientRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.byID[id]
	if !ok {
		return nil, booking.ErrClientNotFound
	}
	return c, nil
}

func (d *fakeDirectory) Register(_ context.Context, in booking.NewClient) (*booking.ClientRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.registered = append(d.registered, in)
	c := &booking.ClientRecord{
		ID:         uint(100 + len(d.registered)),
		Name:       in.Name,
		Phone:      in.Phone,
		BirthDay:   in.BirthDay,
		BirthMonth: in.BirthMonth,
	}
	d.byPhone[c.Phone] = c
	d.byID[c.ID] = c
	return c, nil
}

type fakeAvailability struct {
	mu      sync.Mutex
	slots   []booking.TimeSlot
	err     error
	queries []booking.FreeTimeQuery

	// when set, answers block until it is closed
	gate chan struct{}
}

func (a *fakeAvailability) GetFreeTime(_ context.Context, q booking.FreeTimeQuery) ([]booking.TimeSlot, error) {
	a.mu.Lock()
	a.queries = append(a.queries, q)
	gate := a.gate
	a.mu.Unlock()

	if gate != nil {
		<-gate
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.err != nil {
		return nil, a.err
	}
	return append([]booking.TimeSlot{}, a.slots...), nil
}

func (a *fakeAvailability) last() booking.FreeTimeQuery {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.queries) == 0 {
		return booking.FreeTimeQuery{}
	}
	return a.queries[len(a.queries)-1]
}

type fakeDays struct {
	mu    sync.Mutex
	days  []booking.WorkingDay
	err   error
	calls int

	// when set, List blocks until it is closed
	gate    chan struct{}
	waiting int
}

func (c *fakeDays) List(context.Context) ([]booking.WorkingDay, error) {
	c.mu.Lock()
	gate := c.gate
	if gate != nil {
		c.waiting++
	}
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.days, nil
}

type fakeBooker struct {
	requests []booking.BookingRequest
	err      error
}

func (b *fakeBooker) Book(_ context.Context, req booking.BookingRequest) (*booking.BookingReceipt, error) {
	b.requests = append(b.requests, req)
	if b.err != nil {
		return nil, b.err
	}
	return &booking.BookingReceipt{AppointmentID: uint(500 + len(b.requests))}, nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Dispatch(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

func (c *fakeDays) blocked() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.waiting
}

var errUpstream = errors.New("upstream unavailable")
