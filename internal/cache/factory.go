package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Backend types.
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Config holds configuration for cache creation.
type Config struct {
	// Type is the cache backend type: "memory" or "redis"
	Type string

	// RedisURL is the Redis connection URL (only for redis type)
	// Example: redis://localhost:6379/0
	RedisURL string

	// Prefix is the key prefix for Redis (only for redis type)
	Prefix string

	// DefaultTTL is the default TTL for cache entries
	DefaultTTL time.Duration

	// MaxEntries bounds the memory cache (0 = unbounded)
	MaxEntries int

	// SweepInterval is how often the memory cache purges expired entries
	SweepInterval time.Duration

	// FallbackToMemory creates a memory cache when Redis is unreachable.
	FallbackToMemory bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		Type:             TypeMemory,
		DefaultTTL:       5 * time.Minute,
		MaxEntries:       10000,
		SweepInterval:    time.Minute,
		FallbackToMemory: true,
	}
}

// Info describes the backend NewCache actually created.
type Info struct {
	Type       string
	IsFallback bool
}

// NewCache creates a cache based on the provided configuration.
// A redis type with a URL creates a Redis cache; if that fails and
// FallbackToMemory is set, an in-memory cache is returned instead.
func NewCache(ctx context.Context, cfg Config, logger *slog.Logger) (Cache, Info, error) {
	if cfg.Type == TypeRedis && cfg.RedisURL != "" {
		c, err := NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			return c, Info{Type: TypeRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return nil, Info{}, fmt.Errorf("creating redis cache: %w", err)
		}
		if logger != nil {
			logger.Warn("redis cache unavailable, falling back to memory", "error", err)
		}
		return newMemoryFromConfig(cfg), Info{Type: TypeMemory, IsFallback: true}, nil
	}

	return newMemoryFromConfig(cfg), Info{Type: TypeMemory}, nil
}

func newMemoryFromConfig(cfg Config) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:    cfg.DefaultTTL,
		MaxEntries:    cfg.MaxEntries,
		SweepInterval: cfg.SweepInterval,
	})
}

// MaskRedisURL hides credentials in a Redis URL for logging.
func MaskRedisURL(url string) string {
	const scheme = "redis://"
	if len(url) <= len(scheme) || url[:len(scheme)] != scheme {
		return url
	}
	rest := url[len(scheme):]
	for i := len(rest) - 1; i >= 0; i-- {
		if rest[i] == '@' {
			return scheme + "***" + rest[i:]
		}
	}
	return url
}
