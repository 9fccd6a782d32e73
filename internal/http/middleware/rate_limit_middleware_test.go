package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLocalLimiterEnforcesLimit(t *testing.T) {
	limiter := NewLocalLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d within limit must be allowed", i)
		}
		if d.Remaining != 3-i-1 {
			t.Fatalf("request %d: expected remaining %d, got %d", i, 3-i-1, d.Remaining)
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

	// A different key has its own budget.
	d, err = limiter.Allow(ctx, "5.6.7.8", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow other key: %v", err)
	}
	if !d.Allowed {
		t.Fatal("separate keys must not share a window")
	}
}

func TestLocalLimiterWindowSlides(t *testing.T) {
	limiter := NewLocalLimiter()
	ctx := context.Background()

	if _, err := limiter.Allow(ctx, "k", 1, 10*time.Millisecond); err != nil {
		t.Fatalf("allow: %v", err)
	}
	d, _ := limiter.Allow(ctx, "k", 1, 10*time.Millisecond)
	if d.Allowed {
		t.Fatal("second hit inside the window must be denied")
	}
	time.Sleep(15 * time.Millisecond)
	d, _ = limiter.Allow(ctx, "k", 1, 10*time.Millisecond)
	if !d.Allowed {
		t.Fatal("hit after the window slid past must be allowed")
	}
}

func TestRateLimiterMiddlewareDenies(t *testing.T) {
	rl := NewRateLimiter(NewLocalLimiter(), 2, time.Minute, FailClosed, "test")
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on denial")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected remaining 0, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (Decision, error) {
	return Decision{}, errors.New("backend down")
}

func TestRateLimiterFailureModes(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	open := NewRateLimiter(failingLimiter{}, 10, time.Minute, FailOpen, "test").Middleware()(next)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("fail_open: expected 200, got %d", rec.Code)
	}

	closed := NewRateLimiter(failingLimiter{}, 10, time.Minute, FailClosed, "test").Middleware()(next)
	rec = httptest.NewRecorder()
	closed.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("fail_closed: expected 429, got %d", rec.Code)
	}
}
