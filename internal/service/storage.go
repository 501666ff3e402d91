// Package service wires the resource clients to the query layer under the
// fixed cache keys the rest of the toolkit shares.
package service

import (
	"errors"
	"log/slog"

	"github.com/jatassi/slipstream-go/internal/api"
	"github.com/jatassi/slipstream-go/internal/domain/model"
	"github.com/jatassi/slipstream-go/internal/observability/statsd"
	"github.com/jatassi/slipstream-go/internal/query"
)

// StorageQueryKey is the cache key all storage consumers share.
const StorageQueryKey = "storage:list"

// StorageQueryOptions bundles dependencies for NewStorageQuery.
type StorageQueryOptions struct {
	API    *api.StorageClient
	Store  query.Store
	Policy query.Policy
	Clock  query.Clock
	Logger *slog.Logger
}

// NewStorageQuery builds the cached storage read: fresh for the policy's
// staleness window (30s by default), shared by every consumer of the store.
func NewStorageQuery(opts StorageQueryOptions) (*query.Query[[]model.StorageInfo], error) {
	if opts.API == nil {
		return nil, errors.New("storage api client is required")
	}
	if opts.Store == nil {
		opts.Store = query.NewMemoryStore()
	}

	return query.New(query.Options[[]model.StorageInfo]{
		Key:    StorageQueryKey,
		Fetch:  opts.API.List,
		Store:  opts.Store,
		Policy: opts.Policy,
		Clock:  opts.Clock,
		Logger: opts.Logger,
	})
}

// NewStorageRunner builds the background poller that re-fetches storage info
// at the query's refetch interval (60s by default), keeping long-lived views
// updated without caller action.
func NewStorageRunner(
	q *query.Query[[]model.StorageInfo],
	logger *slog.Logger,
	metrics statsd.Sink,
) (*query.Runner, error) {
	if q == nil {
		return nil, errors.New("storage query is required")
	}

	return query.NewRunner(query.RunnerOptions{
		Name:     "storage",
		Interval: q.Policy().RefetchInterval,
		Refresh:  q.Refresher(),
		Logger:   logger,
		Metrics:  metrics,
	})
}
