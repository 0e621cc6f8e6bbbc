package coupons

import (
	"context"
	"encoding/json"
	"errors"

	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
	"github.com/sunkissed-southern/storefront/pkg/storage"
)

// StorageKey is where a session's applied coupon is kept.
const StorageKey = "coupon"

// State persists the coupon a session has applied, at most one at a time.
type State struct {
	store storage.Store
}

func NewState(store storage.Store) *State {
	return &State{store: store}
}

// Applied returns the stored coupon or nil when none is applied. An
// unreadable value is treated as no coupon.
func (s *State) Applied(ctx context.Context) (*Coupon, error) {
	raw, err := s.store.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read applied coupon")
	}
	var c Coupon
	if err := json.Unmarshal(raw, &c); err != nil || c.Code == "" {
		return nil, nil
	}
	return &c, nil
}

func (s *State) Apply(ctx context.Context, c Coupon) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode coupon")
	}
	if err := s.store.Set(ctx, StorageKey, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store applied coupon")
	}
	return nil
}

func (s *State) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear applied coupon")
	}
	return nil
}
