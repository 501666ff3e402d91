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
)

type recordingSink struct {
	mu      sync.Mutex
	counts  map[string]int64
	timings int
	gauges  int
	tags    []map[string]string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{counts: make(map[string]int64)}
}

func (s *recordingSink) Count(name string, value int64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[name] += value
	s.tags = append(s.tags, tags)
}

func (s *recordingSink) Gauge(string, float64, map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauges++
}

func (s *recordingSink) Timing(string, time.Duration, map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings++
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(RunnerOptions{})
	assert.Error(t, err, "refresh function required")

	r, err := NewRunner(RunnerOptions{Refresh: func(context.Context) error { return nil }})
	require.NoError(t, err)
	assert.Equal(t, DefaultRefetchInterval, r.interval)
	assert.Equal(t, "query", r.name)
}

func TestRunnerRefreshesWithoutCallerAction(t *testing.T) {
	var refreshes atomic.Int64
	r, err := NewRunner(RunnerOptions{
		Name:     "storage",
		Interval: 10 * time.Millisecond,
		Refresh: func(context.Context) error {
			refreshes.Add(1)
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return refreshes.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond, "runner must re-poll on its own")

	cancel()
	require.NoError(t, <-done, "cancellation is a clean stop")
}

func TestRunnerKeepsRunningOnError(t *testing.T) {
	var refreshes atomic.Int64
	sink := newRecordingSink()
	r, err := NewRunner(RunnerOptions{
		Name:     "storage",
		Interval: 10 * time.Millisecond,
		Metrics:  sink,
		Refresh: func(context.Context) error {
			if refreshes.Add(1) == 1 {
				return errors.New("upstream down")
			}
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return refreshes.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond, "an error tick must not stop the loop")

	cancel()
	require.NoError(t, <-done)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.GreaterOrEqual(t, sink.counts["query.refresh"], int64(2))
	assert.GreaterOrEqual(t, sink.timings, 2)

	var sawError bool
	for _, tags := range sink.tags {
		if tags["result"] == "error" && tags["error_class"] != "" {
			sawError = true
		}
	}
	assert.True(t, sawError, "failed tick should be tagged with an error class")
}
