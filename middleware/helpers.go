package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/WilliamSoderberg/volley-bracket/services"
)

// IsAdmin reports whether the request carries a verified admin session.
func IsAdmin(ctx context.Context) bool {
	_, ok := AdminFromContext(ctx)
	return ok
}

func AdminFromContext(ctx context.Context) (*services.AdminClaims, bool) {
	claims, ok := ctx.Value(adminContextKey).(*services.AdminClaims)
	return claims, ok && claims != nil
}

// WithAdmin marks ctx as carrying claims. Handler tests use it to skip
// token signing.
func WithAdmin(ctx context.Context, claims *services.AdminClaims) context.Context {
	return context.WithValue(ctx, adminContextKey, claims)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
