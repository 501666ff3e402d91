package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	obserrors "github.com/jatassi/slipstream-go/internal/observability/errors"
	"github.com/jatassi/slipstream-go/internal/observability/metrics"
	"github.com/jatassi/slipstream-go/internal/observability/statsd"
)

// Runner re-polls a query at a fixed interval so long-lived consumers keep
// seeing fresh data without issuing reads themselves. It runs until the
// context is cancelled and keeps running through refresh errors.
type Runner struct {
	name     string
	interval time.Duration
	refresh  func(ctx context.Context) error
	logger   *slog.Logger
	metrics  statsd.Sink
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	// Name tags log lines and metrics, e.g. "storage".
	Name     string
	Interval time.Duration
	Refresh  func(ctx context.Context) error
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// NewRunner creates a runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Refresh == nil {
		return nil, errors.New("refresh function is required")
	}
	if opts.Name == "" {
		opts.Name = "query"
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultRefetchInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Runner{
		name:     opts.Name,
		interval: opts.Interval,
		refresh:  opts.Refresh,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}, nil
}

// Run starts the polling loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting query runner", "query", r.name, "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "query runner stopping", "query", r.name, "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			start := time.Now()
			err := r.refresh(ctx)
			elapsed := time.Since(start)

			r.emitTickMetrics(elapsed, err)

			if err != nil {
				// Keep polling; the next tick may succeed.
				r.logger.WarnContext(ctx, "query refresh failed", "query", r.name, "error", err)
			}
		}
	}
}

func (r *Runner) emitTickMetrics(elapsed time.Duration, err error) {
	if r.metrics == nil {
		return
	}

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}

	tags := map[string]string{
		"query":  r.name,
		"result": result,
	}
	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	r.metrics.Count("query.refresh", 1, tags)
	r.metrics.Timing("query.refresh_duration", elapsed, metrics.CloneTags(tags))

	if err == nil {
		r.metrics.Gauge("query.last_success_epoch", float64(time.Now().Unix()), map[string]string{
			"query": r.name,
		})
	}
}
