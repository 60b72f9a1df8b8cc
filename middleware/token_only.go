package middleware

import (
	"net/http"
	"time"

	"github.com/awqef/sessiongate/internal/tokens"
)

// RequireToken returns middleware that only checks a token is present and
// not locally expired, skipping the backend entirely. No user snapshot is
// injected; use it for routes that merely need "probably signed in", such
// as redirecting anonymous visitors off SSR pages.
func RequireToken(leeway time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFromRequest(r)
			if !ok || tokens.Expired(token, leeway) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
