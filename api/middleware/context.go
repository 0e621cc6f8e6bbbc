package middleware

import (
	"context"

	"github.com/sunkissed-southern/storefront/internal/session"
)

type contextKey string

const ctxSession contextKey = "session"

// SessionFromContext returns the session attached by the Session middleware.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	if ctx == nil {
		return session.Session{}, false
	}
	s, ok := ctx.Value(ctxSession).(session.Session)
	return s, ok
}

// WithSession injects the shopper session into the context.
func WithSession(ctx context.Context, s session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, s)
}
