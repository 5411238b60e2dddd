package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/voiceunleashed/fluency/internal/domain/identity"
)

type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "id_token"
)

// BearerAuth verifies the Authorization bearer token against the
// identity provider and stores the resulting user in the request
// context. Fails closed with 401.
func BearerAuth(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts the verified user from context.
func GetUserFromContext(ctx context.Context) *identity.User {
	if u, ok := ctx.Value(UserKey).(*identity.User); ok {
		return u
	}
	return nil
}

// GetTokenFromContext extracts the raw bearer token from context.
func GetTokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(TokenKey).(string); ok {
		return t
	}
	return ""
}
