package auth

import (
	"context"
	"net/http"

	"github.com/arefin/flowboard/internal/apperror"
)

// CookieName is the session cookie the middleware reads and the auth
// handlers set.
const CookieName = "token"

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the userID value.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth enforces authentication on protected routes. It reads the JWT
// from the session cookie, validates it, and stores the userID in the
// request context. Missing or invalid tokens get 401 and the chain stops;
// no handler runs for an unauthenticated request.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := ExtractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) if the request never passed RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// ExtractUserID reads the session cookie and validates it. Exported because
// the websocket endpoint must authenticate the request before upgrading the
// connection, outside the normal middleware chain.
func ExtractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", apperror.Unauthorized("authentication required")
	}
	return tokens.Validate(cookie.Value)
}
