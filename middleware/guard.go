package middleware

import (
	"context"
	"net/http"
	"strings"

	sessiongate "github.com/awqef/sessiongate"
	"github.com/awqef/sessiongate/cookieauth"
)

// Validator checks an access token against the backend and returns the user
// it belongs to. [rest.Client] satisfies it.
type Validator interface {
	ValidateToken(ctx context.Context, accessToken string) (sessiongate.UserSnapshot, error)
}

type userContextKey struct{}

// UserFromContext returns the validated user injected by [RequireSession]
// or [RequireRole].
func UserFromContext(ctx context.Context) (sessiongate.UserSnapshot, bool) {
	snap, ok := ctx.Value(userContextKey{}).(sessiongate.UserSnapshot)
	return snap, ok
}

// RequireSession returns middleware that rejects requests without a valid
// access token. The validated user snapshot is injected into the request
// context.
func RequireSession(v Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := tokenFromRequest(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			snap, err := v.ValidateToken(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest prefers the Authorization header over the session
// cookie, so API callers and the SSR path share one guard.
func tokenFromRequest(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}

	cookie, err := r.Cookie(cookieauth.AccessCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
