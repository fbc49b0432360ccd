package middleware

import (
	"context"
	"net/http"
	"strings"

	"genstudio/internal/session"
)

// SessionCookie names the cookie carrying the browser session id.
const SessionCookie = "genstudio_session"

type controllerKey struct{}

// Session resolves the caller's Controller from the session cookie, issuing a
// fresh id when the cookie is missing or its session has expired.
func Session(store *session.Store, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if ck, err := r.Cookie(SessionCookie); err == nil {
			id = strings.TrimSpace(ck.Value)
		}
		ctrl, ok := store.Get(id)
		if !ok {
			id = session.NewID()
			ctrl = store.GetOrCreate(id)
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), controllerKey{}, ctrl)))
	})
}

// ControllerFrom returns the Controller bound by Session, or nil.
func ControllerFrom(ctx context.Context) *session.Controller {
	c, _ := ctx.Value(controllerKey{}).(*session.Controller)
	return c
}

// WithController binds c into ctx the way Session does.
func WithController(ctx context.Context, c *session.Controller) context.Context {
	return context.WithValue(ctx, controllerKey{}, c)
}
