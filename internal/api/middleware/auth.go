package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gaowanliang/TG-Gallery/internal/auth"
)

type contextKey string

// UserContextKey carries the authenticated user name.
const UserContextKey contextKey = "user"

// AuthMiddleware gates routes behind bearer-token verification. It consumes
// tokens issued by the login endpoint; it never issues them.
type AuthMiddleware struct {
	issuer *auth.TokenIssuer
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(issuer *auth.TokenIssuer) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer}
}

// RequireAuth verifies the Authorization bearer token and rejects the
// request before any store access when the token is missing or invalid.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			jsonError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := m.issuer.Verify(parts[1])
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserFromContext retrieves the authenticated user from the request
// context.
func GetUserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(UserContextKey).(string)
	return user
}
