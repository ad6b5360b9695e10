package middleware

import (
	"context"
	"net/http"

	"github.com/WilliamSoderberg/volley-bracket/services"
)

type contextKey string

const adminContextKey contextKey = "admin"

// Authenticate resolves an optional admin session. Requests without a
// bearer token pass through anonymously; a token that does not verify is
// rejected, so a stale session never silently downgrades to code access.
func Authenticate(auth services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.ParseToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired admin session")
				return
			}
			ctx := context.WithValue(r.Context(), adminContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests that Authenticate did not mark as admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			writeError(w, http.StatusUnauthorized, "admin session required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
