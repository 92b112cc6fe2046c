package middlewares

import (
	"context"
	"net/http"
)

const SessionCookieName = "session_id"

type SessionOpener interface {
	OpenSession(id string) (sessionID string, created bool)
}

// Session resolves the visitor's session from the X-Session-Id header or
// the session cookie, issuing a new one when neither names a live session.
// The id is echoed in the response header and cookie.
func Session(opener SessionOpener) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderXSessionId)
			if id == "" {
				if c, err := r.Cookie(SessionCookieName); err == nil {
					id = c.Value
				}
			}

			sessionID, created := opener.OpenSession(id)
			w.Header().Set(HeaderXSessionId, sessionID)
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ContextKeySessionID, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
