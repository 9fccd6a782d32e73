package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/applyr/applyr/internal/http/response"
)

// InternalAPIKey guards the bot-facing routes with a shared secret header,
// compared in constant time. An empty configured key disables the surface
// entirely rather than leaving it open.
func InternalAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("X-Internal-Api-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				response.Error(w, http.StatusForbidden, "FORBIDDEN", "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
