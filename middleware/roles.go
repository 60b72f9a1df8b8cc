package middleware

import (
	"net/http"

	sessiongate "github.com/awqef/sessiongate"
)

// RequireRole returns [RequireSession] with an additional role check. A
// validated user whose role is not in roles gets 403 rather than 401.
func RequireRole(v Validator, roles ...sessiongate.Role) func(http.Handler) http.Handler {
	allowed := make(map[sessiongate.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		check := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, ok := UserFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[snap.Role]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
		return RequireSession(v)(check)
	}
}
