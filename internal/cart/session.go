package cart

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type sessionCtxKey struct{}

// SessionCookie issues and propagates the anonymous session cookie that keys
// the cart.
type SessionCookie struct {
	Name     string
	TTL      time.Duration
	Secure   bool
	SameSite http.SameSite
}

func (sc SessionCookie) name() string {
	if sc.Name == "" {
		return "qc_session"
	}
	return sc.Name
}

// Middleware ensures every request carries a session id, minting one when the
// cookie is absent, and stores it on the request context.
func (sc SessionCookie) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(sc.name()); err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.NewString()
			cookie := &http.Cookie{
				Name:     sc.name(),
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   sc.Secure,
				SameSite: sc.SameSite,
			}
			if sc.TTL > 0 {
				cookie.MaxAge = int(sc.TTL.Seconds())
			}
			http.SetCookie(w, cookie)
		}
		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
	})
}

// WithSessionID stores the session id on the context.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sid)
}

// SessionID extracts the session id placed on the context by Middleware.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionCtxKey{}).(string)
	return sid
}
