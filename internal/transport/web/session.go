package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodlens/internal/logger"
)

type sessionKey struct{}

// SessionConfig holds the session cookie settings.
type SessionConfig struct {
	CookieName string
	Secure     bool
}

// SessionMiddleware ensures every request carries an opaque session id.
// A missing or malformed cookie gets a fresh random id.
func SessionMiddleware(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					sid = id.String()
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sid)
			ctx = logger.With(ctx, zap.String("session_id", sid))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the session id placed by SessionMiddleware, or "".
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey{}).(string)
	return sid
}
