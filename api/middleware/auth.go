package middleware

import (
	"context"
	"net/http"

	"github.com/sunkissed-southern/storefront/internal/session"
	"github.com/sunkissed-southern/storefront/pkg/auth"
	"github.com/sunkissed-southern/storefront/pkg/logger"
)

// IdentityObserver is told about every session's identity once per request.
type IdentityObserver interface {
	Observe(ctx context.Context, s session.Session) (bool, error)
}

// Auth attaches the caller's identity to the session. Requests without a
// bearer token stay anonymous; the backend remains the authority on whether
// a token is valid, so unreadable tokens are still forwarded as-is.
// Must run after Session.
func Auth(observer IdentityObserver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess, ok := SessionFromContext(ctx)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			sess.Identity = identityFromRequest(ctx, r, logg)
			if logg != nil && sess.Identity.Subject != "" {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    sess.Identity.Subject,
					"actor_role": sess.Identity.Role,
				})
			}

			if observer != nil {
				if _, err := observer.Observe(ctx, sess); err != nil && logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "session identity check failed")
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
		})
	}
}

func identityFromRequest(ctx context.Context, r *http.Request, logg *logger.Logger) auth.Identity {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return auth.Identity{}
	}
	id, err := auth.Inspect(token)
	if err != nil {
		if logg != nil {
			logg.Debug(logg.WithField(ctx, "error", err.Error()), "bearer token claims unreadable")
		}
		return auth.Identity{Token: token}
	}
	return id
}
