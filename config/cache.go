package config

import (
	"strings"
	"time"
)

// CacheConfig contains the query cache and freshness policy configuration.
// When RedisAddr is empty the in-process memory store is used.
type CacheConfig struct {
	// Staleness is how long cached data is served without a network call.
	Staleness time.Duration `env:"STALENESS" envDefault:"30s"`

	// RefetchInterval is how often background pollers re-fetch regardless
	// of staleness.
	RefetchInterval time.Duration `env:"REFETCH_INTERVAL" envDefault:"60s"`

	// Redis connection settings for a shared cache.
	RedisAddr     string `env:"REDIS_ADDR"     envDefault:""`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.Staleness <= 0 {
		c.Staleness = 30 * time.Second
	}
	if c.RefetchInterval <= 0 {
		c.RefetchInterval = 60 * time.Second
	}
	c.RedisAddr = strings.TrimSpace(c.RedisAddr)
	if c.RedisDB < 0 {
		c.RedisDB = 0
	}
}

// UseRedis reports whether a Redis-backed store is configured.
func (c *CacheConfig) UseRedis() bool {
	return c.RedisAddr != ""
}
