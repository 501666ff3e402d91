package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "http://localhost:8989/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.Staleness)
	assert.Equal(t, time.Minute, cfg.Cache.RefetchInterval)
	assert.False(t, cfg.Cache.UseRedis())
	assert.False(t, cfg.Observability.Metrics.IsEnabled())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SLIPSTREAM_URL", "https://slipstream.example/api ")
	t.Setenv("SLIPSTREAM_API_KEY", "abc123")
	t.Setenv("CACHE_STALENESS", "10s")
	t.Setenv("CACHE_REDIS_ADDR", "redis:6379")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "https://slipstream.example/api", cfg.API.BaseURL)
	assert.Equal(t, "abc123", cfg.API.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Cache.Staleness)
	assert.True(t, cfg.Cache.UseRedis())
}

func TestSanitizeClampsInvalidValues(t *testing.T) {
	cfg := AppConfig{
		API:   APIConfig{Timeout: -time.Second},
		Cache: CacheConfig{Staleness: 0, RefetchInterval: -time.Minute, RedisDB: -2},
	}
	cfg.Sanitize()

	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.Staleness)
	assert.Equal(t, time.Minute, cfg.Cache.RefetchInterval)
	assert.Equal(t, 0, cfg.Cache.RedisDB)
}

func TestMetricsDisabledWithoutAddress(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "}
	cfg.Sanitize()

	assert.False(t, cfg.IsEnabled())
	assert.Equal(t, defaultMetricsPrefix, cfg.Prefix)
}
