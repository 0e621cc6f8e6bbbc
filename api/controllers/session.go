package controllers

import (
	"net/http"

	"github.com/sunkissed-southern/storefront/api/middleware"
	"github.com/sunkissed-southern/storefront/internal/session"
	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
)

// SessionFromRequest returns the shopper session or an internal error when
// the Session middleware did not run.
func SessionFromRequest(r *http.Request) (session.Session, error) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return session.Session{}, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable")
	}
	return sess, nil
}
