package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// State is what a view sees for one key.
// IsLoading stays true until the first fetch for the key settles; later
// refetches keep the previous Data visible and never set it again.
type State[T any] struct {
	Data      T
	HasData   bool
	IsLoading bool
	Err       error
	UpdatedAt time.Time
}

// Fetcher loads the value behind a key
type Fetcher[T any] func(ctx context.Context) (T, error)

// entry is a settled outcome as stored in the backing cache
type entry struct {
	data      any
	hasData   bool
	err       error
	settledAt time.Time
}

// Options configures Queries
type Options struct {
	// StaleTime is how long a successful result is served without refetching.
	StaleTime time.Duration
	// GCTime is how long an untouched entry is retained.
	GCTime time.Duration
	// Timeout bounds a single flight, independent of any caller's context.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Queries is the process-wide query cache. It is the only writer of
// fetched data: an entry is written solely by the flight that loaded it,
// and only if the key has not been invalidated since the flight started.
type Queries struct {
	store     Store
	flights   singleflight.Group
	staleTime time.Duration
	gcTime    time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu   sync.Mutex
	gens map[Key]uint64
}

// NewQueries creates a query cache backed by store
func NewQueries(store Store, opts Options) *Queries {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queries{
		store:     store,
		staleTime: opts.StaleTime,
		gcTime:    opts.GCTime,
		timeout:   opts.Timeout,
		logger:    logger.Named("queries"),
		now:       time.Now,
		gens:      make(map[Key]uint64),
	}
	if c, ok := store.(interface{ OnCollect(func(Key)) }); ok {
		c.OnCollect(func(key Key) {
			q.logger.Debug("collected", zap.String("key", string(key)))
		})
	}
	return q
}

// Fetch returns the state for key, loading it unless a fresh successful
// result is cached. Concurrent callers for one key share a single request.
// If ctx ends first the caller gets ctx's error while the flight continues
// and still settles the entry for later readers.
func Fetch[T any](ctx context.Context, q *Queries, key Key, fn Fetcher[T]) State[T] {
	return fetch(ctx, q, key, fn, false)
}

// Refetch loads key even when a fresh result is cached. Existing data stays
// visible through Peek while the request is in flight.
func Refetch[T any](ctx context.Context, q *Queries, key Key, fn Fetcher[T]) State[T] {
	return fetch(ctx, q, key, fn, true)
}

// Peek returns the current state for key without loading anything
func Peek[T any](q *Queries, key Key) State[T] {
	e, ok := q.lookup(key)
	if !ok {
		return State[T]{IsLoading: true}
	}
	return stateOf[T](e)
}

// Invalidate drops the entry for key and fences off any flight already
// running for it: that flight's outcome will be discarded.
func (q *Queries) Invalidate(key Key) {
	q.mu.Lock()
	q.gens[key]++
	gen := q.gens[key]
	q.mu.Unlock()

	q.store.Drop(key)
	q.logger.Debug("invalidated", zap.String("key", string(key)), zap.Uint64("generation", gen))
}

// Clear drops every entry and fences every running flight
func (q *Queries) Clear() {
	q.mu.Lock()
	for key := range q.gens {
		q.gens[key]++
	}
	keys := len(q.gens)
	q.mu.Unlock()
	q.store.Purge()
	q.logger.Debug("cleared", zap.Int("keys", keys))
}

func fetch[T any](ctx context.Context, q *Queries, key Key, fn Fetcher[T], force bool) State[T] {
	if !force {
		if e, ok := q.lookup(key); ok && e.err == nil && q.fresh(e) {
			q.logger.Debug("cache hit", zap.String("key", string(key)))
			return stateOf[T](e)
		}
	}

	gen := q.generation(key)
	flightKey := string(key) + "#" + strconv.FormatUint(gen, 10)

	ch := q.flights.DoChan(flightKey, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if q.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, q.timeout)
			defer cancel()
		}
		q.logger.Debug("fetching", zap.String("key", string(key)), zap.Uint64("generation", gen))
		v, err := fn(fctx)
		q.settle(key, gen, v, err)
		return v, err
	})

	select {
	case res := <-ch:
		if e, ok := q.lookup(key); ok && q.generation(key) == gen {
			return stateOf[T](e)
		}
		// The key was invalidated while loading; report what this flight saw.
		state := State[T]{Err: res.Err, UpdatedAt: q.now()}
		if res.Err == nil {
			state.Data, state.HasData = res.Val.(T)
		}
		return state
	case <-ctx.Done():
		state := Peek[T](q, key)
		state.Err = ctx.Err()
		return state
	}
}

// settle writes a flight's outcome unless the key moved on meanwhile.
// A failed refetch keeps the previous data next to the new error.
func (q *Queries) settle(key Key, gen uint64, v any, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.gens[key] != gen {
		q.logger.Debug("discarded stale result",
			zap.String("key", string(key)),
			zap.Uint64("generation", gen),
			zap.Uint64("current", q.gens[key]))
		return
	}

	e := &entry{settledAt: q.now()}
	if err != nil {
		e.err = err
		if prev, ok := q.lookup(key); ok {
			e.data, e.hasData = prev.data, prev.hasData
		}
		q.logger.Debug("settled with error", zap.String("key", string(key)), zap.Error(err))
	} else {
		e.data, e.hasData = v, true
		q.logger.Debug("settled", zap.String("key", string(key)))
	}
	q.store.Save(key, e, q.gcTime)
}

func (q *Queries) lookup(key Key) (*entry, bool) {
	v, ok := q.store.Load(key)
	if !ok {
		return nil, false
	}
	e, ok := v.(*entry)
	return e, ok
}

// generation returns key's current generation, registering the key so
// that Clear fences flights started before it
func (q *Queries) generation(key Key) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	gen, ok := q.gens[key]
	if !ok {
		q.gens[key] = 0
	}
	return gen
}

func (q *Queries) fresh(e *entry) bool {
	return q.now().Sub(e.settledAt) < q.staleTime
}

func stateOf[T any](e *entry) State[T] {
	state := State[T]{Err: e.err, UpdatedAt: e.settledAt}
	if e.hasData {
		state.Data, state.HasData = e.data.(T)
	}
	return state
}
