// Package session assigns each browser a stable cart session identifier via a
// long-lived cookie. The identifier keys durable cart storage; no
// authentication or user identity is attached to it.
package session

import (
	"context"
	"crypto/rand"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shamanicca/storefront/internal/platform/requestctx"
)

// CookieName is the cart session cookie.
const CookieName = "storefront_session"

// TTL is how long the session cookie stays valid. Carts are long-lived by
// design; an abandoned cart should still be there weeks later.
const TTL = 180 * 24 * time.Hour

// Middleware ensures every request carries a session ID, minting a new ULID
// and setting the cookie when none is present. The ID is exposed through the
// request context via requestctx.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := fromRequest(r)
			if id == "" {
				id = NewID()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(TTL.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := requestctx.WithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewID mints a fresh session identifier.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}

// FromContext returns the session ID carried by the request context, or the
// empty string when the middleware did not run.
func FromContext(ctx context.Context) string {
	return requestctx.SessionID(ctx)
}

func fromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	value := strings.TrimSpace(cookie.Value)
	if !validID(value) {
		return ""
	}
	return value
}

// validID accepts ULID-shaped values only, so a tampered cookie cannot choose
// an arbitrary storage key.
func validID(value string) bool {
	if len(value) != ulid.EncodedSize {
		return false
	}
	_, err := ulid.ParseStrict(value)
	return err == nil
}
