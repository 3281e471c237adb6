package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mmynk/taxava/internal/auth"
	"github.com/mmynk/taxava/internal/session"
)

// ErrorWriter renders an error response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// GetUserID extracts the authenticated user ID from the context.
// Returns 0 if the request carries no session.
func GetUserID(ctx context.Context) int {
	s, err := session.FromContext(ctx)
	if err != nil {
		return 0
	}
	return s.UserID()
}

// RequireSession returns a middleware that requires a valid bearer token
// whose user is also the current user in the session holder. Logging out
// clears the holder, so tokens issued before that stop working.
func RequireSession(jwtManager *auth.JWTManager, holder *session.Holder, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, r, auth.ErrMissingToken)
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				writeError(w, r, auth.ErrInvalidToken)
				return
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				writeError(w, r, err)
				return
			}

			sess, err := holder.Current(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			if sess.UserID() != claims.UserID {
				writeError(w, r, session.ErrNoSession)
				return
			}

			if info := getRequestInfo(r.Context()); info != nil {
				info.userID = sess.UserID()
			}
			ctx := session.WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsAuthError reports whether err means the caller is not authenticated.
func IsAuthError(err error) bool {
	return errors.Is(err, auth.ErrMissingToken) ||
		errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, session.ErrNoSession)
}
