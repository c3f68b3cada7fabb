package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/stockfolio/backend/internal/api/response"
	"github.com/stockfolio/backend/internal/auth"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

// Auth verifies the session token and puts the owner ID into the request
// context. The token is accepted as an Authorization bearer header or as the
// "token" cookie set at login.
type Auth struct {
	tokens *auth.TokenManager
}

// NewAuth creates the auth middleware with the provided token manager.
func NewAuth(tokens *auth.TokenManager) *Auth {
	return &Auth{tokens: tokens}
}

// Handler rejects requests without a valid token with 401 Unauthorized.
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if cookie, err := r.Cookie("token"); err == nil {
				token = cookie.Value
			}
		}

		if token == "" {
			response.RespondError(w, http.StatusUnauthorized, "no token provided", nil)
			return
		}

		ownerID, err := a.tokens.Verify(token)
		if err != nil {
			response.RespondError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerID returns the authenticated owner ID stored in the context, or the
// empty string if the request did not pass the auth middleware.
func OwnerID(ctx context.Context) string {
	if id, ok := ctx.Value(ownerIDKey).(string); ok {
		return id
	}
	return ""
}

// WithOwnerID returns a context carrying the given owner ID. Exposed for
// handler tests that bypass the middleware.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
