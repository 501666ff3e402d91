package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jatassi/slipstream-go/internal/api"
	"github.com/jatassi/slipstream-go/internal/domain/model"
	"github.com/jatassi/slipstream-go/internal/observability/statsd"
	"github.com/jatassi/slipstream-go/internal/query"
)

// StatusQueryKey is the cache key for the sync status snapshot.
const StatusQueryKey = "rsssync:status"

// statusStaleness keeps live views close to the server while still
// collapsing bursts of concurrent reads into one request.
const statusStaleness = 5 * time.Second

// StatusQueryOptions bundles dependencies for NewStatusQuery.
type StatusQueryOptions struct {
	API    *api.RSSSyncClient
	Store  query.Store
	Policy query.Policy
	Clock  query.Clock
	Logger *slog.Logger
}

// NewStatusQuery builds the cached sync-status read used by watch-style
// consumers. Unlike storage, status defaults to a short staleness window.
func NewStatusQuery(opts StatusQueryOptions) (*query.Query[model.SyncStatus], error) {
	if opts.API == nil {
		return nil, errors.New("rsssync api client is required")
	}
	if opts.Store == nil {
		opts.Store = query.NewMemoryStore()
	}

	policy := opts.Policy
	if policy.Staleness <= 0 {
		policy.Staleness = statusStaleness
	}

	return query.New(query.Options[model.SyncStatus]{
		Key:    StatusQueryKey,
		Fetch:  opts.API.GetStatus,
		Store:  opts.Store,
		Policy: policy,
		Clock:  opts.Clock,
		Logger: opts.Logger,
	})
}

// NewStatusRunner builds the background poller that re-fetches the sync
// status at the query's refetch interval, keeping long-lived views updated
// and feeding tick metrics to the sink.
func NewStatusRunner(
	q *query.Query[model.SyncStatus],
	logger *slog.Logger,
	metrics statsd.Sink,
) (*query.Runner, error) {
	if q == nil {
		return nil, errors.New("status query is required")
	}

	return query.NewRunner(query.RunnerOptions{
		Name:     "rsssync_status",
		Interval: q.Policy().RefetchInterval,
		Refresh:  q.Refresher(),
		Logger:   logger,
		Metrics:  metrics,
	})
}
