package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisCacheForTest(t *testing.T) (*RedisHandleLookupCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisHandleLookupCache(client, "test_handle", time.Minute), mr
}

func TestRedisHandleLookupCacheSetGet(t *testing.T) {
	cache, _ := newRedisCacheForTest(t)
	ctx := context.Background()

	if miss, err := cache.Get(ctx, "ns", "alice"); err != nil || miss {
		t.Fatalf("empty cache: miss=%v err=%v", miss, err)
	}
	if err := cache.Set(ctx, "ns", "alice", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	miss, err := cache.Get(ctx, "ns", "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !miss {
		t.Fatal("expected cached miss")
	}
	if miss, _ := cache.Get(ctx, "ns", "bob"); miss {
		t.Fatal("unrelated key must not be cached")
	}
}

func TestRedisHandleLookupCacheTTL(t *testing.T) {
	cache, mr := newRedisCacheForTest(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "ns", "alice", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if miss, _ := cache.Get(ctx, "ns", "alice"); miss {
		t.Fatal("expired entry must not be served")
	}
}

func TestRedisHandleLookupCacheInvalidateNamespace(t *testing.T) {
	cache, _ := newRedisCacheForTest(t)
	ctx := context.Background()

	for _, key := range []string{"alice", "bob", "carol"} {
		if err := cache.Set(ctx, "ns", key, time.Minute); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if err := cache.InvalidateNamespace(ctx, "ns"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	for _, key := range []string{"alice", "bob", "carol"} {
		if miss, _ := cache.Get(ctx, "ns", key); miss {
			t.Fatalf("key %s survived namespace invalidation", key)
		}
	}
}

func TestRedisHandleLookupCacheNilClient(t *testing.T) {
	cache := NewRedisHandleLookupCache(nil, "", time.Minute)
	ctx := context.Background()

	if err := cache.Set(ctx, "ns", "alice", time.Minute); err != nil {
		t.Fatalf("set with nil client: %v", err)
	}
	if miss, err := cache.Get(ctx, "ns", "alice"); err != nil || miss {
		t.Fatalf("nil client must behave as empty cache, got %v %v", miss, err)
	}
}
