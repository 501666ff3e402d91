// Package bootstrap loads configuration and wires the shared dependencies
// the CLI commands hang off.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jatassi/slipstream-go/config"
	"github.com/jatassi/slipstream-go/internal/api"
	"github.com/jatassi/slipstream-go/internal/observability/statsd"
	"github.com/jatassi/slipstream-go/internal/query"
)

// InitLogger initializes the structured logger.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// NewAPIClient builds the shared API client from config.
func NewAPIClient(cfg config.AppConfig) (*api.Client, error) {
	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.APIKey,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}
	return client, nil
}

// NewQueryStore selects the cache backend: Redis when configured, otherwise
// the in-process memory store.
//
//nolint:ireturn // Callers program against the query layer's Store interface.
func NewQueryStore(cfg config.AppConfig) query.Store {
	if cfg.Cache.UseRedis() {
		return query.NewRedisStore(query.NewRedisClient(query.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}))
	}
	return query.NewMemoryStore()
}

// QueryPolicy converts the cache config into the query layer's policy.
func QueryPolicy(cfg config.AppConfig) query.Policy {
	return query.Policy{
		Staleness:       cfg.Cache.Staleness,
		RefetchInterval: cfg.Cache.RefetchInterval,
	}
}

// NewMetrics builds the StatsD sink. Disabled configs yield an inert client.
func NewMetrics(cfg config.AppConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create statsd client: %w", err)
	}
	return client, nil
}
