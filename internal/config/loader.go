package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if NITECAP_CONFIG is set
//  3. env (prefix NITECAP_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("NITECAP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: NITECAP_REDIS_ADDR, NITECAP_CACHE_TTL_HOURS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("NITECAP_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "nitecap_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if cfg.CacheTTLHours <= 0 {
		return nil, fmt.Errorf("%w: cache_ttl_hours must be positive", ErrInvalidConfig)
	}
	if cfg.RateLimit <= 0 || cfg.RateWindowSeconds <= 0 {
		return nil, fmt.Errorf("%w: rate limit bounds must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
