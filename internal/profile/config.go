package profile

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/capsulemed/internal/store"
)

// Config selects the profile backend.
type Config struct {
	Backend     string
	RedisURL    string
	RedisPrefix string
}

// DefaultConfig returns the local backend.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendLocal,
		RedisURL:    "redis://localhost:6379/0",
		RedisPrefix: "capsulemed",
	}
}

// ConfigFromEnv reads CAPSULEMED_PROFILE_BACKEND, CAPSULEMED_REDIS_URL and
// CAPSULEMED_REDIS_PREFIX over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("CAPSULEMED_PROFILE_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("CAPSULEMED_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("CAPSULEMED_REDIS_PREFIX"); v != "" {
		cfg.RedisPrefix = v
	}
	return cfg
}

// Open creates the configured backend. repo holds local accounts and the
// session for every backend.
func Open(ctx context.Context, cfg Config, repo store.ProfileRepo) (Store, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocalStore(repo), nil
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix, repo)
	default:
		return nil, fmt.Errorf("unknown profile backend: %q", cfg.Backend)
	}
}
