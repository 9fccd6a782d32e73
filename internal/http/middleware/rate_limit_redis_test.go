package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLimiterForTest(t *testing.T) (Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, "test_rl"), mr
}

func TestRedisLimiterEnforcesLimit(t *testing.T) {
	limiter, _ := newRedisLimiterForTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d within limit must be allowed", i)
		}
	}

	d, err := limiter.Allow(ctx, "1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatal("request over limit must be denied")
	}
	if d.RetryAfter < time.Second {
		t.Fatalf("expected retry-after of at least a second, got %v", d.RetryAfter)
	}

	d, err = limiter.Allow(ctx, "5.6.7.8", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow other key: %v", err)
	}
	if !d.Allowed {
		t.Fatal("separate keys must not share a counter")
	}
}

func TestRedisLimiterBackendFailure(t *testing.T) {
	limiter, mr := newRedisLimiterForTest(t)
	mr.Close()

	if _, err := limiter.Allow(context.Background(), "k", 3, time.Minute); err == nil {
		t.Fatal("expected an error once the backend is gone")
	}
}
