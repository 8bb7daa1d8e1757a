package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/quillpost/quillpost-go/internal/crypto"
	"github.com/quillpost/quillpost-go/internal/respond"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenVerifier resolves a session token to a user ID.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// JWTAuth returns middleware that validates a Bearer token from the
// Authorization header. Requests without a valid token never reach next.
func JWTAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header", false)
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				unauthorized(w, "invalid authorization format", true)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, crypto.ErrExpiredToken) {
					unauthorized(w, "token expired", true)
					return
				}
				unauthorized(w, "invalid token", true)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// unauthorized writes a 401 with an RFC 6750 challenge so clients can tell a
// rejected session token apart from other 401s.
func unauthorized(w http.ResponseWriter, msg string, invalidToken bool) {
	challenge := `Bearer realm="quillpost"`
	if invalidToken {
		challenge += `, error="invalid_token"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	respond.Error(w, http.StatusUnauthorized, msg)
}

// WithUserID stores the authenticated user ID in ctx.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
