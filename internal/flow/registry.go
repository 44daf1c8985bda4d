package flow

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/BruksfildServices01/booking-flow/internal/draft"
)

var ErrUnknownSession = errors.New("unknown booking session")

// Registry keeps the live flows of a process keyed by session id. The
// draft survives eviction in storage; an evicted session is re-entered with
// its fields restored and the index back at the first step.
type Registry struct {
	storage draft.Storage
	flows   *expirable.LRU[string, *Flow]

	// concurrent entries of one session share a single build; other
	// sessions are not held up by it
	entering singleflight.Group
}

type entered struct {
	flow     *Flow
	restored bool
}

func NewRegistry(storage draft.Storage, size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = 1024
	}
	return &Registry{
		storage: storage,
		flows:   expirable.NewLRU[string, *Flow](size, nil, ttl),
	}
}

// Enter returns the live flow of the session when it matches opts, or
// opens a new one.
func (r *Registry) Enter(
	ctx context.Context,
	deps Deps,
	sessionID string,
	opts EnterOptions,
) (*Flow, bool, error) {

	if opts.Kind == "" {
		opts.Kind = KindPublic
	}

	if f, ok := r.flows.Get(sessionID); ok && f.kind == opts.Kind {
		return f, true, nil
	}

	v, err, _ := r.entering.Do(sessionID+":"+string(opts.Kind), func() (any, error) {
		if f, ok := r.flows.Get(sessionID); ok && f.kind == opts.Kind {
			return entered{flow: f, restored: true}, nil
		}

		f, restored, err := Enter(ctx, deps, r.storage, sessionID, opts)
		if err != nil {
			return nil, err
		}

		r.flows.Add(sessionID, f)
		return entered{flow: f, restored: restored}, nil
	})
	if err != nil {
		return nil, false, err
	}

	e := v.(entered)
	return e.flow, e.restored, nil
}

// Get returns the live flow of a session.
func (r *Registry) Get(sessionID string) (*Flow, error) {
	f, ok := r.flows.Get(sessionID)
	if !ok {
		return nil, ErrUnknownSession
	}
	return f, nil
}

func (r *Registry) Forget(sessionID string) {
	r.flows.Remove(sessionID)
}

func (r *Registry) Len() int {
	return r.flows.Len()
}
