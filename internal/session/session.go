// Package session scopes client state to one shopper session and notices
// when the signed-in identity behind it changes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sunkissed-southern/storefront/internal/coupons"
	"github.com/sunkissed-southern/storefront/internal/sales"
	"github.com/sunkissed-southern/storefront/pkg/auth"
	"github.com/sunkissed-southern/storefront/pkg/backend"
	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/storage"
)

// Session is one shopper's view of the gateway. Store is already scoped to
// the session, so keys like "cart" are private to it.
type Session struct {
	ID       string
	Identity auth.Identity
	Store    storage.Store
}

// New scopes root under the session id.
func New(id string, identity auth.Identity, root storage.Store) Session {
	return Session{ID: id, Identity: identity, Store: storage.Namespace(root, id)}
}

const subjectKey = "auth_subject"

type subjectRecord struct {
	Subject  string `json:"subject"`
	SalesKey string `json:"sales_key,omitempty"`
}

type salesInvalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// Watcher drops state derived under a previous identity when the session's
// token subject changes (sign-in, sign-out, switching accounts).
type Watcher struct {
	sales salesInvalidator
	logg  *logger.Logger
}

func NewWatcher(sales salesInvalidator, logg *logger.Logger) *Watcher {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Watcher{sales: sales, logg: logg}
}

// Observe records the current subject and reports whether it differs from
// the one seen last. The first observation of a session is not a change.
func (w *Watcher) Observe(ctx context.Context, s Session) (bool, error) {
	current := subjectRecord{Subject: s.Identity.Subject, SalesKey: sales.CacheKey(s.Identity)}

	raw, err := s.Store.Get(ctx, subjectKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return false, w.record(ctx, s, current)
	case err != nil:
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read session subject")
	}

	var prev subjectRecord
	if err := json.Unmarshal(raw, &prev); err == nil && prev.Subject == current.Subject {
		if prev.SalesKey == current.SalesKey {
			return false, nil
		}
		// refreshed token, same shopper
		return false, w.record(ctx, s, current)
	}

	ctx = w.logg.WithFields(ctx, map[string]any{"previous_subject": prev.Subject, "subject": current.Subject})
	w.logg.Info(ctx, "session identity changed; dropping derived state")

	if err := coupons.NewState(s.Store).Clear(ctx); err != nil {
		return true, err
	}
	if w.sales != nil && isAdminKey(prev.SalesKey) && prev.SalesKey != current.SalesKey {
		if err := w.sales.Invalidate(ctx, prev.SalesKey); err != nil {
			w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "sales cache invalidation failed")
		}
	}
	return true, w.record(ctx, s, current)
}

func isAdminKey(key string) bool {
	return strings.HasPrefix(key, string(backend.SalesScopeAdmin)+":")
}

func (w *Watcher) record(ctx context.Context, s Session, rec subjectRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session subject")
	}
	if err := s.Store.Set(ctx, subjectKey, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session subject")
	}
	return nil
}
