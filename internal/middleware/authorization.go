package middleware

import (
	"net/http"
	"slices"

	"munidenuncia/internal/utils"
)

// RequireAuth rejects requests WithAuth did not attach a session to.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := Claims(r.Context()); !ok {
			utils.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles lets the request through only for the listed roles. No
// session is 401, a session with another role is 403.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := Claims(r.Context())
			switch {
			case !ok:
				utils.Error(w, http.StatusUnauthorized, "authentication required")
			case !slices.Contains(roles, c.Role):
				utils.Error(w, http.StatusForbidden, "forbidden")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
