// Package cache stores serialized attribute values keyed by attribute,
// language and item. Operations are batched because values are always read
// and invalidated for a set of items at once.
package cache

import (
	"context"
	"time"
)

// Cache is a batched byte store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// GetMany returns the live entries for keys. Missing or expired keys
	// are absent from the result.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)

	// SetMany stores entries with ttl. A zero ttl uses the backend default.
	SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error

	// Delete removes keys. Unknown keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	Close() error
}

// StatsProvider is implemented by caches that keep counters.
type StatsProvider interface {
	Stats() Stats
}

// Stats holds cache counters. Hits and misses count keys, not calls.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Sets      int64   `json:"sets"`
	Evictions int64   `json:"evictions"`
	Items     int     `json:"items"`
	HitRate   float64 `json:"hit_rate"`
}

// Error is a cache sentinel error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss is returned by Get for missing or expired keys.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed is returned by every operation after Close.
	ErrCacheClosed Error = "cache closed"
)

// Get fetches a single key from c.
func Get(ctx context.Context, c Cache, key string) ([]byte, error) {
	found, err := c.GetMany(ctx, []string{key})
	if err != nil {
		return nil, err
	}
	v, ok := found[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

// Set stores a single entry in c.
func Set(ctx context.Context, c Cache, key string, value []byte, ttl time.Duration) error {
	return c.SetMany(ctx, map[string][]byte{key: value}, ttl)
}

func hitRate(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses) * 100
}
