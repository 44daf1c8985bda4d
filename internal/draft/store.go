// Package draft holds the in-progress booking draft of one session and keeps
// its serialized copy in session storage in step with every mutation.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
)

var ErrTypeMismatch = errors.New("value does not match step")

// DeriveFunc recomputes derived fields in place. It runs under the store
// lock and must not block.
type DeriveFunc func(d *booking.Draft)

type watcher struct {
	keys []booking.StepKey
	fn   DeriveFunc
}

type Store struct {
	mu       sync.Mutex
	draft    booking.Draft
	storage  Storage
	key      string
	log      *zap.Logger
	watchers []watcher
}

// Open creates the store of a session. When a draft was persisted under the
// session it is restored and restored is true.
func Open(
	ctx context.Context,
	storage Storage,
	sessionID string,
	log *zap.Logger,
) (s *Store, restored bool, err error) {

	if log == nil {
		log = zap.NewNop()
	}

	s = &Store{
		storage: storage,
		key:     KeyPrefix + sessionID,
		log:     log,
	}

	raw, err := storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, ErrNotFound):
		return s, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("load draft: %w", err)
	}

	if err := json.Unmarshal(raw, &s.draft); err != nil {
		// a corrupt copy is dropped rather than blocking the session
		s.log.Warn("discarding unreadable draft", zap.String("key", s.key), zap.Error(err))
		s.draft = booking.Draft{}
		return s, false, nil
	}

	return s, true, nil
}

// Key is the storage key of this session's draft.
func (s *Store) Key() string {
	return s.key
}

// Watch declares that fn derives values from the given step slices. It runs
// after every mutation that changes one of them.
func (s *Store) Watch(fn DeriveFunc, keys ...booking.StepKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watchers = append(s.watchers, watcher{keys: keys, fn: fn})
}

func (s *Store) Snapshot() booking.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draft.Clone()
}

// Get returns a copy of one step slice.
func (s *Store) Get(key booking.StepKey) (any, bool) {
	s.mu.Lock()
	d := s.draft.Clone()
	s.mu.Unlock()

	switch key {
	case booking.StepCategory:
		return d.CategoryStep, d.CategoryStep != nil
	case booking.StepService:
		return d.ServiceStep, d.ServiceStep != nil
	case booking.StepServiceAdd:
		return d.ServiceAddStep, d.ServiceAddStep != nil
	case booking.StepDayHour:
		return d.DayHourStep, d.DayHourStep != nil
	case booking.StepClient:
		return d.ClientStep, d.ClientStep != nil
	case booking.StepConfirmed:
		return d.ConfirmedStep, d.ConfirmedStep != nil
	}
	return nil, false
}

// Set replaces one step slice. A nil value clears it.
func (s *Store) Set(ctx context.Context, key booking.StepKey, value any) error {
	return s.Update(ctx, func(d *booking.Draft) error {
		return Assign(d, key, value)
	})
}

// Update applies fn to a copy of the draft and commits the result when fn
// succeeds.
func (s *Store) Update(ctx context.Context, fn func(d *booking.Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.draft.Clone()
	if err := fn(&next); err != nil {
		return err
	}

	s.commit(ctx, next)
	return nil
}

// Replace commits a whole draft, typically one a validator has worked on.
func (s *Store) Replace(ctx context.Context, d booking.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commit(ctx, d)
}

// Reset empties the draft and removes the persisted copy.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = booking.Draft{}
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.log.Warn("draft delete failed", zap.String("key", s.key), zap.Error(err))
	}
}

func (s *Store) commit(ctx context.Context, next booking.Draft) {
	changed := ChangedKeys(s.draft, next)

	for _, w := range s.watchers {
		if intersects(w.keys, changed) {
			w.fn(&next)
		}
	}

	s.draft = next.Clone()
	s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) {
	raw, err := json.Marshal(s.draft)
	if err != nil {
		s.log.Error("draft marshal failed", zap.String("key", s.key), zap.Error(err))
		return
	}

	if err := s.storage.Save(ctx, s.key, raw); err != nil {
		// the in-memory draft stays authoritative
		s.log.Warn("draft persist failed", zap.String("key", s.key), zap.Error(err))
	}
}

// ChangedKeys lists the step slices that differ between two drafts.
func ChangedKeys(prev, next booking.Draft) []booking.StepKey {
	var out []booking.StepKey

	if !reflect.DeepEqual(prev.CategoryStep, next.CategoryStep) {
		out = append(out, booking.StepCategory)
	}
	if !reflect.DeepEqual(prev.ServiceStep, next.ServiceStep) {
		out = append(out, booking.StepService)
	}
	if !reflect.DeepEqual(prev.ServiceAddStep, next.ServiceAddStep) {
		out = append(out, booking.StepServiceAdd)
	}
	if !reflect.DeepEqual(prev.DayHourStep, next.DayHourStep) {
		out = append(out, booking.StepDayHour)
	}
	if !reflect.DeepEqual(prev.ClientStep, next.ClientStep) {
		out = append(out, booking.StepClient)
	}
	if !reflect.DeepEqual(prev.ConfirmedStep, next.ConfirmedStep) {
		out = append(out, booking.StepConfirmed)
	}

	return out
}

func intersects(a, b []booking.StepKey) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// Assign sets one step slice of d. A nil value clears it.
func Assign(d *booking.Draft, key booking.StepKey, value any) error {
	switch key {
	case booking.StepCategory:
		switch v := value.(type) {
		case nil:
			d.CategoryStep = nil
		case booking.CategoryStep:
			d.CategoryStep = &v
		case *booking.CategoryStep:
			d.CategoryStep = v
		default:
			return mismatch(key, value)
		}
	case booking.StepService:
		switch v := value.(type) {
		case nil:
			d.ServiceStep = nil
		case booking.ServiceStep:
			d.ServiceStep = &v
		case *booking.ServiceStep:
			d.ServiceStep = v
		default:
			return mismatch(key, value)
		}
	case booking.StepServiceAdd:
		switch v := value.(type) {
		case nil:
			d.ServiceAddStep = nil
		case []booking.ServiceItem:
			d.ServiceAddStep = append([]booking.ServiceItem{}, v...)
		default:
			return mismatch(key, value)
		}
	case booking.StepDayHour:
		switch v := value.(type) {
		case nil:
			d.DayHourStep = nil
		case booking.DayHourStep:
			d.DayHourStep = &v
		case *booking.DayHourStep:
			d.DayHourStep = v
		default:
			return mismatch(key, value)
		}
	case booking.StepClient:
		switch v := value.(type) {
		case nil:
			d.ClientStep = nil
		case booking.ClientStep:
			d.ClientStep = &v
		case *booking.ClientStep:
			d.ClientStep = v
		default:
			return mismatch(key, value)
		}
	case booking.StepConfirmed:
		switch v := value.(type) {
		case nil:
			d.ConfirmedStep = nil
		case booking.ConfirmedStep:
			d.ConfirmedStep = &v
		case *booking.ConfirmedStep:
			d.ConfirmedStep = v
		default:
			return mismatch(key, value)
		}
	default:
		return fmt.Errorf("unknown step %q: %w", key, ErrTypeMismatch)
	}

	return nil
}

func mismatch(key booking.StepKey, value any) error {
	return fmt.Errorf("%s: %T: %w", key, value, ErrTypeMismatch)
}
