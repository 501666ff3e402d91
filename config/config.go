// Package config defines the application configuration, loaded from
// environment variables with the github.com/caarlos0/env library. See the
// individual domain config files for available variables:
//   - api.go: SlipStream server connection
//   - cache.go: query cache and freshness policy
//   - observability.go: metrics emission
package config

// AppConfig composes domain-specific configuration from separate files.
type AppConfig struct {
	// API server connection configuration
	API APIConfig `envPrefix:"SLIPSTREAM_"`

	// Cache and freshness policy configuration
	Cache CacheConfig `envPrefix:"CACHE_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Cache.Sanitize()
	c.Observability.Sanitize()
}
