package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=query

type countingFetcher struct {
	calls   atomic.Int64
	value   atomic.Int64
	err     error
	fetched chan struct{}
}

func newCountingFetcher(initial int64) *countingFetcher {
	f := &countingFetcher{fetched: make(chan struct{}, 16)}
	f.value.Store(initial)
	return f
}

func (f *countingFetcher) fetch(_ context.Context) (int64, error) {
	f.calls.Add(1)
	select {
	case f.fetched <- struct{}{}:
	default:
	}
	if f.err != nil {
		return 0, f.err
	}
	return f.value.Load(), nil
}

func (f *countingFetcher) waitForFetch(t *testing.T) {
	t.Helper()
	select {
	case <-f.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
	}
}

func newTestQuery(t *testing.T, fetcher *countingFetcher, clock Clock) *Query[int64] {
	t.Helper()
	q, err := New(Options[int64]{
		Key:   "test:value",
		Fetch: fetcher.fetch,
		Store: NewMemoryStore(),
		Clock: clock,
	})
	require.NoError(t, err)
	return q
}

func TestNewValidation(t *testing.T) {
	store := NewMemoryStore()
	fetch := func(context.Context) (int64, error) { return 0, nil }

	_, err := New(Options[int64]{Fetch: fetch, Store: store})
	assert.Error(t, err, "missing key")

	_, err = New(Options[int64]{Key: "k", Store: store})
	assert.Error(t, err, "missing fetch")

	_, err = New(Options[int64]{Key: "k", Fetch: fetch})
	assert.Error(t, err, "missing store")
}

func TestPolicyDefaults(t *testing.T) {
	q := newTestQuery(t, newCountingFetcher(1), nil)
	assert.Equal(t, DefaultStaleness, q.Policy().Staleness)
	assert.Equal(t, DefaultRefetchInterval, q.Policy().RefetchInterval)
}

func TestGetServesFreshCacheWithoutRefetch(t *testing.T) {
	clock := NewFixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	fetcher := newCountingFetcher(42)
	q := newTestQuery(t, fetcher, clock)
	ctx := context.Background()

	first, err := q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), first)

	// Inside the staleness window the second read is a pure cache hit.
	clock.Advance(29 * time.Second)
	second, err := q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), second)
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestGetServesStaleAndRefreshesInBackground(t *testing.T) {
	clock := NewFixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	fetcher := newCountingFetcher(42)
	q := newTestQuery(t, fetcher, clock)
	ctx := context.Background()

	_, err := q.Get(ctx)
	require.NoError(t, err)
	fetcher.waitForFetch(t)

	// Past the staleness window the cached value is still served immediately,
	// with the refresh happening off the request path.
	clock.Advance(31 * time.Second)
	fetcher.value.Store(99)

	stale, err := q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stale)

	fetcher.waitForFetch(t)
	require.Eventually(t, func() bool {
		v, getErr := q.Get(ctx)
		return getErr == nil && v == 99
	}, 2*time.Second, 10*time.Millisecond, "background refresh should update the cache")
}

func TestGetPropagatesFetchError(t *testing.T) {
	fetcher := newCountingFetcher(0)
	fetcher.err = errors.New("upstream down")
	q := newTestQuery(t, fetcher, nil)

	_, err := q.Get(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "upstream down")
}

func TestRefreshDeduplicatesConcurrentCallers(t *testing.T) {
	var calls atomic.Int64
	gate := make(chan struct{})

	q, err := New(Options[int64]{
		Key:   "test:dedup",
		Store: NewMemoryStore(),
		Fetch: func(context.Context) (int64, error) {
			calls.Add(1)
			<-gate
			return 7, nil
		},
	})
	require.NoError(t, err)

	const consumers = 8
	var wg sync.WaitGroup
	results := make([]int64, consumers)
	errs := make([]error, consumers)

	for i := 0; i < consumers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = q.Refresh(context.Background())
		}()
	}

	// Give every consumer time to reach the singleflight group.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	for i := 0; i < consumers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(7), results[i])
	}
	assert.Equal(t, int64(1), calls.Load(), "concurrent consumers must share one in-flight request")
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetcher := newCountingFetcher(1)
	q := newTestQuery(t, fetcher, nil)
	ctx := context.Background()

	_, err := q.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Invalidate(ctx))

	fetcher.value.Store(2)
	got, err := q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
	assert.Equal(t, int64(2), fetcher.calls.Load())
}

func TestCorruptCacheEntryTreatedAsMiss(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "test:corrupt", []byte("{not json"), 0))

	fetcher := newCountingFetcher(5)
	q, err := New(Options[int64]{Key: "test:corrupt", Fetch: fetcher.fetch, Store: store})
	require.NoError(t, err)

	got, err := q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestStoreReadFailureFallsThroughToFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "test:flaky").Return(nil, errors.New("redis get: EOF"))
	store.EXPECT().Set(gomock.Any(), "test:flaky", gomock.Any(), gomock.Any()).Return(nil)

	fetcher := newCountingFetcher(11)
	q, err := New(Options[int64]{Key: "test:flaky", Fetch: fetcher.fetch, Store: store})
	require.NoError(t, err)

	got, err := q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11), got)
}

func TestStoreWriteFailureStillReturnsValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "test:wonly").Return(nil, nil)
	store.EXPECT().Set(gomock.Any(), "test:wonly", gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	fetcher := newCountingFetcher(13)
	q, err := New(Options[int64]{Key: "test:wonly", Fetch: fetcher.fetch, Store: store})
	require.NoError(t, err)

	got, err := q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(13), got, "a failed cache write must not fail the read")
}
