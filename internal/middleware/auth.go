package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"alarm-clock-backend/internal/models"
)

type contextKey string

const scopeKey contextKey = "scope"

// TokenValidator resolves a bearer token to a user ID
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
}

// ScopeMiddleware resolves the acting scope of a request. Requests without an
// Authorization header act in the anonymous scope; a malformed header or an
// invalid token is rejected.
func ScopeMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), models.AnonymousScope)))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			userID, err := validator.ValidateJWT(parts[1])
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), models.Scope(userID))))
		})
	}
}

// WithScope returns a copy of ctx carrying scope
func WithScope(ctx context.Context, scope models.Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// GetScope extracts the acting scope from context, anonymous when unset
func GetScope(ctx context.Context) models.Scope {
	scope, ok := ctx.Value(scopeKey).(models.Scope)
	if !ok {
		return models.AnonymousScope
	}
	return scope
}

// ScopeFromToken resolves the scope of a WebSocket connection from its query token
func ScopeFromToken(token string, validator TokenValidator) (models.Scope, error) {
	if token == "" {
		return models.AnonymousScope, nil
	}
	userID, err := validator.ValidateJWT(token)
	if err != nil {
		return models.AnonymousScope, err
	}
	return models.Scope(userID), nil
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
