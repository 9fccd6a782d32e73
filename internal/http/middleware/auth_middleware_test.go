package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/applyr/applyr/internal/domain"
	"github.com/applyr/applyr/internal/security"
)

func newProtectedHandler(t *testing.T, codec *security.TokenCodec) http.Handler {
	t.Helper()
	return Auth(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("claims missing from context inside protected handler")
		}
		w.Header().Set("X-Test-Username", claims.Username)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	codec := security.NewTokenCodec("applyr", "0123456789abcdef0123456789abcdef")
	handler := newProtectedHandler(t, codec)

	token, err := codec.SignAccessToken(&domain.User{ID: 1, Username: "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Test-Username") != "alice" {
		t.Fatalf("claims did not reach the handler: %v", rec.Header())
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	codec := security.NewTokenCodec("applyr", "0123456789abcdef0123456789abcdef")
	handler := Auth(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	codec := security.NewTokenCodec("applyr", "0123456789abcdef0123456789abcdef")
	other := security.NewTokenCodec("applyr", "another-secret-another-secret-32")

	foreign, err := other.SignAccessToken(&domain.User{ID: 1, Username: "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	refresh, err := codec.SignRefreshToken(1, time.Hour)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	expired, err := codec.SignAccessToken(&domain.User{ID: 1, Username: "alice"}, -time.Minute)
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}

	cases := map[string]string{
		"garbage":        "Bearer not-a-jwt",
		"foreign secret": "Bearer " + foreign,
		"refresh token":  "Bearer " + refresh,
		"expired":        "Bearer " + expired,
		"wrong scheme":   "Basic dXNlcjpwYXNz",
	}
	for name, header := range cases {
		handler := Auth(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatalf("%s: handler must not run", name)
		}))
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestClaimsFromContextEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ClaimsFromContext(req.Context()); ok {
		t.Fatal("expected no claims in a bare context")
	}
}
