package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/ayush/research-extractor/internal/session"
)

const SessionCookie = "session_id"

type sessionKey struct{}

// Session ensures every request carries a session cookie and injects the
// session id into the request context.
func Session(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				id = cookie.Value
			} else {
				id = session.NewID()
			}

			// refresh on every response so active sessions do not expire
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(ttl / time.Second),
			})

			ctx := context.WithValue(r.Context(), sessionKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the id injected by Session, or "" outside of it.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
