package httpx

import (
	"net/http"
)

// RequireRole the caller must hold one of the given roles. It must run
// after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			if _, ok := want[id.Role]; !ok {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				WriteError(w, http.StatusForbidden, "insufficient_role", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
