package middleware

import (
	"net/http"

	"github.com/Rrens/profilesync/internal/api/response"
)

// SessionChecker reports whether a user is signed in.
type SessionChecker interface {
	IsAuthenticated() bool
}

// RequireSession rejects requests while no access token is stored. The
// remote API still has the final say on whether the token is valid.
func RequireSession(checker SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checker.IsAuthenticated() {
				response.Unauthorized(w, "not signed in")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
