package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/applyr/applyr/internal/http/response"
	"github.com/applyr/applyr/internal/observability"
	"github.com/applyr/applyr/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Auth guards protected routes: it extracts the bearer access token,
// verifies it, and puts the claims into the request context. There is no
// database round trip here; the signed claims are trusted for the request's
// lifetime.
func Auth(codec *security.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing")
				response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token")
				return
			}
			claims, err := codec.ParseAccessToken(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid")
				response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid")
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// ClaimsFromContext returns the verified claims Auth stored, if any.
func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*security.Claims)
	return c, ok
}
