package resolver

import (
	"context"
	"errors"
	"sync"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
)

// ErrSuperseded is returned to a caller whose query was replaced by a newer
// one before its response arrived.
var ErrSuperseded = errors.New("slot query superseded")

// Slots resolves candidate start times for (date, professional, required
// minutes). Only the most recent query may publish its result: a response
// to an older query is discarded.
type Slots struct {
	source booking.Availability

	mu       sync.Mutex
	gen      uint64
	query    booking.FreeTimeQuery
	slots    []booking.TimeSlot
	resolved bool
	pending  bool
}

func NewSlots(source booking.Availability) *Slots {
	return &Slots{source: source}
}

func (s *Slots) Resolve(ctx context.Context, q booking.FreeTimeQuery) ([]booking.TimeSlot, error) {
	return s.Await(ctx, s.Begin(q))
}

// Begin makes q the current query and returns its generation. Callers that
// commit the query's inputs reserve the generation in the same critical
// section, so queries are ordered like the commits.
func (s *Slots) Begin(q booking.FreeTimeQuery) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.query = q
	s.slots = nil
	s.resolved = false
	s.pending = true
	return s.gen
}

// Await runs the query reserved by Begin. Its result is published only if
// no newer query was begun meanwhile.
func (s *Slots) Await(ctx context.Context, gen uint64) ([]booking.TimeSlot, error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	q := s.query
	s.mu.Unlock()

	slots, err := s.source.GetFreeTime(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return nil, ErrSuperseded
	}
	s.pending = false
	if err != nil {
		return nil, err
	}

	if slots == nil {
		slots = []booking.TimeSlot{}
	}
	s.slots = slots
	s.resolved = true

	return append([]booking.TimeSlot{}, slots...), nil
}

// Current returns the query last issued and its slots. ok is false while
// that query is still pending or failed.
func (s *Slots) Current() (q booking.FreeTimeQuery, slots []booking.TimeSlot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.resolved {
		return s.query, nil, false
	}
	return s.query, append([]booking.TimeSlot{}, s.slots...), true
}

// Pending reports whether the current query is still waiting for its
// response.
func (s *Slots) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending
}

// Offers reports whether total was among the slots resolved for q.
func (s *Slots) Offers(q booking.FreeTimeQuery, total int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.resolved || s.query != q {
		return false
	}
	for _, slot := range s.slots {
		if slot.Total == total {
			return true
		}
	}
	return false
}

// Invalidate forgets the current result and makes any in-flight response
// stale.
func (s *Slots) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.query = booking.FreeTimeQuery{}
	s.slots = nil
	s.resolved = false
	s.pending = false
}
