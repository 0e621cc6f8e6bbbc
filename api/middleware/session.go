package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunkissed-southern/storefront/internal/session"
	"github.com/sunkissed-southern/storefront/pkg/auth"
	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/storage"
)

const (
	SessionHeader = "X-Session-Id"
	SessionCookie = "sks_session"

	sessionCookieMaxAge = 30 * 24 * time.Hour
)

// Session resolves the shopper session from the X-Session-Id header or the
// sks_session cookie, minting a new id when neither carries a valid one.
// The id is echoed back in both so clients can keep using it.
func Session(root storage.Store, secureCookie bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := sessionIDFromRequest(r)
			if !ok {
				id = uuid.NewString()
			}

			w.Header().Set(SessionHeader, id)
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(sessionCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secureCookie,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
			}
			ctx = WithSession(ctx, session.New(id, auth.Identity{}, root))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionIDFromRequest(r *http.Request) (string, bool) {
	if id, ok := parseSessionID(r.Header.Get(SessionHeader)); ok {
		return id, true
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return parseSessionID(cookie.Value)
	}
	return "", false
}

func parseSessionID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
