package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"twinflame-backend/internal/services"
)

type contextKey string

const identityKey contextKey = "identity"

// Auth verifies the bearer token on every request and stores the resulting
// identity in the request context.
func Auth(verifier services.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "No token provided", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			identity, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				respondError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the verified identity from the context.
func IdentityFromContext(ctx context.Context) *services.Identity {
	identity, ok := ctx.Value(identityKey).(*services.Identity)
	if !ok {
		return nil
	}
	return identity
}

// WithIdentity returns a context carrying the given identity. Used by the
// WebSocket handshake and by tests.
func WithIdentity(ctx context.Context, identity *services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
