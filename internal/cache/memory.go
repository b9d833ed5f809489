package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// MemoryCache keeps entries in process memory. When MaxEntries is reached
// the entry closest to expiry is evicted first.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
	maxEntries int
	now        func() time.Time

	stop   chan struct{}
	closed atomic.Bool

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

// MemoryCacheOptions configures a MemoryCache.
type MemoryCacheOptions struct {
	DefaultTTL time.Duration
	// MaxEntries bounds the number of entries, 0 means unbounded.
	MaxEntries int
	// SweepInterval is how often expired entries are purged, 0 disables
	// the background sweep. Expired entries are never returned either way.
	SweepInterval time.Duration
}

// NewMemoryCache creates a MemoryCache and starts its sweeper.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[string]memoryEntry),
		defaultTTL: opts.DefaultTTL,
		maxEntries: opts.MaxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go c.sweepLoop(opts.SweepInterval)
	}
	return c
}

// NewSimpleMemoryCache creates an unbounded MemoryCache without a sweeper.
func NewSimpleMemoryCache(ttl time.Duration) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{DefaultTTL: ttl})
}

func (c *MemoryCache) GetMany(_ context.Context, keys []string) (map[string][]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	now := c.now()
	found := make(map[string][]byte, len(keys))

	c.mu.RLock()
	for _, key := range keys {
		e, ok := c.entries[key]
		if !ok || e.expired(now) {
			continue
		}
		found[key] = append([]byte(nil), e.value...)
	}
	c.mu.RUnlock()

	c.hits.Add(int64(len(found)))
	c.misses.Add(int64(len(keys) - len(found)))
	return found, nil
}

func (c *MemoryCache) SetMany(_ context.Context, entries map[string][]byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if len(entries) == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := c.now()
	expiresAt := now.Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, value := range entries {
		if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
			c.purgeLocked(now)
			if len(c.entries) >= c.maxEntries {
				c.evictLocked()
			}
		}
		c.entries[key] = memoryEntry{
			value:     append([]byte(nil), value...),
			expiresAt: expiresAt,
		}
	}
	c.sets.Add(int64(len(entries)))
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// Close stops the sweeper. Further calls fail with ErrCacheClosed.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stop)
		c.mu.Lock()
		c.entries = make(map[string]memoryEntry)
		c.mu.Unlock()
	}
	return nil
}

// Stats reports counters and the number of stored entries, expired
// entries not yet swept included.
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	items := len(c.entries)
	c.mu.RUnlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Hits:      hits,
		Misses:    misses,
		Sets:      c.sets.Load(),
		Evictions: c.evictions.Load(),
		Items:     items,
		HitRate:   hitRate(hits, misses),
	}
}

func (c *MemoryCache) purgeLocked(now time.Time) {
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}

// evictLocked drops the entry that would expire first.
func (c *MemoryCache) evictLocked() {
	var (
		victim string
		oldest time.Time
		found  bool
	)
	for key, e := range c.entries {
		if !found || e.expiresAt.Before(oldest) {
			victim, oldest, found = key, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
		c.evictions.Add(1)
	}
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.purgeLocked(c.now())
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

var (
	_ Cache         = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
