// Package config defines service configuration structures and loading.
package config

import "context"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the Prometheus listener, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// RedisAddr points at the cache backend. Empty keeps the cache
	// in-process.
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`

	// DatabaseURL points at the Postgres venue store. Empty keeps the
	// store in-process.
	DatabaseURL string `koanf:"database_url"`

	// CacheTTLHours sets the discovery result cache TTL.
	CacheTTLHours int `koanf:"cache_ttl_hours"`

	// CacheSingleFlight de-duplicates concurrent loads per cache key.
	CacheSingleFlight bool `koanf:"cache_single_flight"`

	// RateWindowSeconds and RateLimit bound outbound provider calls.
	RateWindowSeconds int `koanf:"rate_window_seconds"`
	RateLimit         int `koanf:"rate_limit"`

	// RadiusStepMeters and MaxWidenings bound discovery fallback widening.
	RadiusStepMeters int `koanf:"radius_step_meters"`
	MaxWidenings     int `koanf:"max_widenings"`

	// DefaultPageSize and MaxPageSize bound discovery pagination.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// SocialToken authorizes social-profile lookups. Empty disables the
	// social scoring signal.
	SocialToken string `koanf:"social_token"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		MetricsAddr:       ":9090",
		CacheTTLHours:     6,
		RateWindowSeconds: 60,
		RateLimit:         90,
		RadiusStepMeters:  1000,
		MaxWidenings:      3,
		DefaultPageSize:   20,
		MaxPageSize:       100,
	}
}
