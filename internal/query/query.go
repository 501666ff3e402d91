package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Default freshness policy: cached data is fresh for 30 seconds; long-lived
// consumers re-poll every 60 seconds regardless of staleness.
const (
	DefaultStaleness       = 30 * time.Second
	DefaultRefetchInterval = 60 * time.Second

	// backgroundRefreshTimeout bounds refreshes detached from a caller's context.
	backgroundRefreshTimeout = 30 * time.Second
)

// Policy controls how long cached data is served without a network call and
// how often a Runner re-polls it.
type Policy struct {
	Staleness       time.Duration `json:"staleness"`
	RefetchInterval time.Duration `json:"refetchInterval"`
}

// Sanitize applies defaults to unset or invalid policy values.
func (p *Policy) Sanitize() {
	if p.Staleness <= 0 {
		p.Staleness = DefaultStaleness
	}
	if p.RefetchInterval <= 0 {
		p.RefetchInterval = DefaultRefetchInterval
	}
}

// FetchFunc loads the upstream value for a query.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// envelope is the stored form of a cached value.
type envelope struct {
	FetchedAt time.Time       `json:"fetchedAt"`
	Value     json.RawMessage `json:"value"`
}

// Options bundles the dependencies for New.
type Options[T any] struct {
	// Key is the fixed cache key all consumers of this query share.
	Key   string
	Fetch FetchFunc[T]
	Store Store

	Policy Policy
	Clock  Clock
	Logger *slog.Logger
}

// Query is a cached read of one upstream resource. Within the staleness
// window Get serves the cache without a network call; after it, Get still
// serves the cached value but schedules a background refresh. Concurrent
// consumers share one cache entry and one in-flight request.
type Query[T any] struct {
	key    string
	fetch  FetchFunc[T]
	store  Store
	policy Policy
	clock  Clock
	logger *slog.Logger
	group  singleflight.Group
}

// New creates a Query. Key, Fetch, and Store are required.
func New[T any](opts Options[T]) (*Query[T], error) {
	if opts.Key == "" {
		return nil, errors.New("query key is required")
	}
	if opts.Fetch == nil {
		return nil, errors.New("fetch function is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}

	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policy := opts.Policy
	policy.Sanitize()

	return &Query[T]{
		key:    opts.Key,
		fetch:  opts.Fetch,
		store:  opts.Store,
		policy: policy,
		clock:  clock,
		logger: logger,
	}, nil
}

// Key returns the cache key.
func (q *Query[T]) Key() string {
	return q.key
}

// Policy returns the effective freshness policy.
func (q *Query[T]) Policy() Policy {
	return q.policy
}

// Get returns the resource value. Cache hits inside the staleness window
// cost no network call; stale hits are returned immediately while a refresh
// runs in the background; misses fetch synchronously.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	value, fetchedAt, ok := q.load(ctx)
	if ok {
		if q.clock.Now().Sub(fetchedAt) <= q.policy.Staleness {
			return value, nil
		}
		q.refreshAsync(ctx)
		return value, nil
	}

	return q.Refresh(ctx)
}

// Refresh fetches the upstream value, stores it, and returns it. Concurrent
// refreshes of the same key collapse into one upstream request.
func (q *Query[T]) Refresh(ctx context.Context) (T, error) {
	result, err, _ := q.group.Do(q.key, func() (any, error) {
		value, fetchErr := q.fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		q.persist(ctx, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	value, ok := result.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query %s: unexpected cached type %T", q.key, result)
	}
	return value, nil
}

// Invalidate drops the cached entry so the next Get fetches upstream.
func (q *Query[T]) Invalidate(ctx context.Context) error {
	_, err := q.store.Delete(ctx, q.key)
	return err
}

// Refresher adapts Refresh for a Runner.
func (q *Query[T]) Refresher() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := q.Refresh(ctx)
		return err
	}
}

// load reads the cached envelope. Store or decode failures are logged and
// treated as a miss so the caller falls through to a fetch.
func (q *Query[T]) load(ctx context.Context) (T, time.Time, bool) {
	var zero T

	data, err := q.store.Get(ctx, q.key)
	if err != nil {
		q.logger.WarnContext(ctx, "query cache read failed", "key", q.key, "error", err)
		return zero, time.Time{}, false
	}
	if data == nil {
		return zero, time.Time{}, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		q.logger.WarnContext(ctx, "query cache entry corrupt", "key", q.key, "error", err)
		return zero, time.Time{}, false
	}

	var value T
	if err := json.Unmarshal(env.Value, &value); err != nil {
		q.logger.WarnContext(ctx, "query cache value corrupt", "key", q.key, "error", err)
		return zero, time.Time{}, false
	}

	return value, env.FetchedAt, true
}

// persist writes the envelope back. Write failures are logged, not returned:
// the fetched value is still good for the caller.
func (q *Query[T]) persist(ctx context.Context, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		q.logger.WarnContext(ctx, "query value not serializable", "key", q.key, "error", err)
		return
	}

	env := envelope{
		FetchedAt: q.clock.Now(),
		Value:     raw,
	}
	data, err := json.Marshal(env)
	if err != nil {
		q.logger.WarnContext(ctx, "query envelope encode failed", "key", q.key, "error", err)
		return
	}

	if err := q.store.Set(ctx, q.key, data, 0); err != nil {
		q.logger.WarnContext(ctx, "query cache write failed", "key", q.key, "error", err)
	}
}

// refreshAsync refreshes off the caller's request path. The singleflight
// group guarantees at most one upstream request even when many stale reads
// arrive at once.
func (q *Query[T]) refreshAsync(ctx context.Context) {
	detached := context.WithoutCancel(ctx)
	go func() {
		refreshCtx, cancel := context.WithTimeout(detached, backgroundRefreshTimeout)
		defer cancel()

		if _, err := q.Refresh(refreshCtx); err != nil {
			q.logger.WarnContext(refreshCtx, "background refresh failed", "key", q.key, "error", err)
		}
	}()
}
