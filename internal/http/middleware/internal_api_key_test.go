package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInternalAPIKey(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := InternalAPIKey("shared-secret")(next)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusForbidden},
		{"wrong key", "not-the-secret", http.StatusForbidden},
		{"key prefix", "shared", http.StatusForbidden},
		{"right key", "shared-secret", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/internal/bot/vacancies", nil)
		if tc.header != "" {
			req.Header.Set("X-Internal-Api-Key", tc.header)
		}
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

func TestInternalAPIKeyDisabledWhenEmpty(t *testing.T) {
	guarded := InternalAPIKey("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with the surface disabled")
	}))

	req := httptest.NewRequest(http.MethodGet, "/internal/bot/vacancies", nil)
	req.Header.Set("X-Internal-Api-Key", "")
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with empty configured key, got %d", rec.Code)
	}
}
