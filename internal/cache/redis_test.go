package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

// newTestRedisCache connects to MM_TEST_REDIS_URL under a per-test prefix,
// skipping the test when no server is configured.
func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("MM_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MM_TEST_REDIS_URL not set")
	}

	prefix := fmt.Sprintf("mmtest:%s:%d:", t.Name(), time.Now().UnixNano())
	c, err := NewRedisCache(context.Background(), url, prefix, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		iter := c.client.Scan(ctx, 0, prefix+"*", redisScanCount).Iterator()
		for iter.Next(ctx) {
			c.client.Del(ctx, iter.Val())
		}
		_ = c.Close()
	})
	return c
}

func TestRedisCache_Batch(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	err := c.SetMany(ctx, map[string][]byte{
		"translatedurl:7:de:1": []byte(`{"href":"/eins"}`),
		"translatedurl:7:de:2": []byte(`{"href":"/zwei"}`),
	}, 0)
	if err != nil {
		t.Fatalf("SetMany: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"translatedurl:7:de:1", "translatedurl:7:de:2", "translatedurl:7:de:3"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetMany returned %d entries, want 2", len(got))
	}
	if string(got["translatedurl:7:de:2"]) != `{"href":"/zwei"}` {
		t.Errorf("entry 2 = %q", got["translatedurl:7:de:2"])
	}

	if err := c.Delete(ctx, "translatedurl:7:de:1", "translatedurl:7:de:2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Get(ctx, c, "translatedurl:7:de:1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete: err = %v, want ErrCacheMiss", err)
	}

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 2 || stats.Sets != 2 {
		t.Errorf("stats = %+v, want 2 hits, 2 misses, 2 sets", stats)
	}
	if stats.Items != 0 {
		t.Errorf("Items = %d, want 0", stats.Items)
	}
}

func TestRedisCache_EmptyBatches(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	got, err := c.GetMany(ctx, nil)
	if err != nil || len(got) != 0 {
		t.Errorf("GetMany(nil) = %v, %v", got, err)
	}
	if err := c.SetMany(ctx, nil, 0); err != nil {
		t.Errorf("SetMany(nil): %v", err)
	}
	if err := c.Delete(ctx); err != nil {
		t.Errorf("Delete(): %v", err)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	if err := Set(ctx, c, "short", []byte("v"), time.Second); err != nil {
		t.Fatal(err)
	}
	ttl, err := c.client.TTL(ctx, c.prefix+"short").Result()
	if err != nil {
		t.Fatal(err)
	}
	if ttl <= 0 || ttl > time.Second {
		t.Errorf("TTL = %v, want within (0, 1s]", ttl)
	}

	time.Sleep(1100 * time.Millisecond)
	if _, err := Get(ctx, c, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after TTL: err = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_Closed(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Ping after Close: %v", err)
	}
	if _, err := c.GetMany(ctx, []string{"k"}); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("GetMany after Close: %v", err)
	}
}

func TestNewRedisCache_BadURL(t *testing.T) {
	ctx := context.Background()
	if _, err := NewRedisCache(ctx, "", "p:", time.Minute); err == nil {
		t.Error("empty URL should fail")
	}
	if _, err := NewRedisCache(ctx, "not-a-url", "p:", time.Minute); err == nil {
		t.Error("invalid URL should fail")
	}
}
