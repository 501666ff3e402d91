package config

import (
	"strings"
	"time"
)

// APIConfig contains the SlipStream server connection configuration.
type APIConfig struct {
	// BaseURL is the API base of the SlipStream server,
	// e.g. "http://localhost:8989/api".
	BaseURL string `env:"URL" envDefault:"http://localhost:8989/api"`

	// APIKey is sent as X-Api-Key on every request when set.
	APIKey string `env:"API_KEY" envDefault:""`

	// Timeout bounds each request round-trip.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimSpace(a.BaseURL)
	a.APIKey = strings.TrimSpace(a.APIKey)
	if a.Timeout <= 0 {
		a.Timeout = 10 * time.Second
	}
}
