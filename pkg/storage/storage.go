// Package storage models the durable client-side key/value state a shopper
// session owns: the cart and the applied coupon.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a synchronous key/value store. Set replaces the full value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores backed by a network dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type namespaced struct {
	inner  Store
	prefix string
}

// Namespace scopes every key of inner under prefix, e.g. one shopper session.
func Namespace(inner Store, parts ...string) Store {
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 0 {
		return inner
	}
	return &namespaced{inner: inner, prefix: strings.Join(clean, ":") + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}
