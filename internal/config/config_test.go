package config

import (
	"testing"
	"time"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://localhost/applyr_test")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr: %q", cfg.HTTPAddr)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("unexpected access TTL: %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 10*24*time.Hour {
		t.Fatalf("unexpected refresh TTL: %v", cfg.RefreshTokenTTL)
	}
	if cfg.CookieSameSite != "lax" {
		t.Fatalf("unexpected samesite default: %q", cfg.CookieSameSite)
	}
	if cfg.RateLimitFailureMode != "fail_closed" {
		t.Fatalf("unexpected failure mode default: %q", cfg.RateLimitFailureMode)
	}
}

func TestLoadOverrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "5")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "1")
	t.Setenv("RATE_LIMIT_FAILURE_MODE", "fail_open")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("unexpected addr: %q", cfg.HTTPAddr)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("unexpected access TTL: %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 24*time.Hour {
		t.Fatalf("unexpected refresh TTL: %v", cfg.RefreshTokenTTL)
	}
	if cfg.RateLimitFailureMode != "fail_open" {
		t.Fatalf("unexpected failure mode: %q", cfg.RateLimitFailureMode)
	}
}

func TestLoadNormalizesSameSite(t *testing.T) {
	setValidEnv(t)
	t.Setenv("COOKIE_SAMESITE", "Strict")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Stored lowered, so downstream cookie code can match exactly.
	if cfg.CookieSameSite != "strict" {
		t.Fatalf("expected normalized samesite, got %q", cfg.CookieSameSite)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		mut  func(t *testing.T)
	}{
		{"missing dsn", func(t *testing.T) { t.Setenv("DATABASE_DSN", "") }},
		{"missing secret", func(t *testing.T) { t.Setenv("JWT_SECRET", "") }},
		{"short secret", func(t *testing.T) { t.Setenv("JWT_SECRET", "too-short") }},
		{"bad samesite", func(t *testing.T) { t.Setenv("COOKIE_SAMESITE", "sideways") }},
		{"bad failure mode", func(t *testing.T) { t.Setenv("RATE_LIMIT_FAILURE_MODE", "explode") }},
		{"zero ttl", func(t *testing.T) { t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "0") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setValidEnv(t)
			tc.mut(t)
			if _, err := Load(""); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
