package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mypocket/mypocket/internal/infrastructure/auth"
	"github.com/mypocket/mypocket/internal/usecase"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// IdentityContextKey is the context key for the authenticated identity
	IdentityContextKey ContextKey = "identity"
)

// AuthMiddleware creates an authentication middleware. Every request below
// it carries a verified caller identity; all documents are keyed by that
// identity's user ID.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			tokenString := parts[1]

			// Verify token
			claims, err := jwtManager.Verify(tokenString)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			identity := usecase.Identity{
				UserID:      claims.UserID,
				Email:       claims.Email,
				DisplayName: claims.DisplayName,
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DevAuth injects an identity from plain headers. It stands in for the real
// token check in local setups where AUTH_ENABLED is off.
func DevAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			userID = "local-user"
		}

		identity := usecase.Identity{
			UserID:      userID,
			Email:       r.Header.Get("X-User-Email"),
			DisplayName: r.Header.Get("X-User-Name"),
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext extracts the authenticated identity from context
func IdentityFromContext(ctx context.Context) (usecase.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(usecase.Identity)
	return identity, ok
}
