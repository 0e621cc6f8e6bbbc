package redis

import (
	"context"
	"time"
)

// CheckoutGuard marks a session as having an order in flight. The key
// expires on its own if the holder dies before releasing it.
type CheckoutGuard struct {
	client *Client
}

func NewCheckoutGuard(client *Client) *CheckoutGuard {
	return &CheckoutGuard{client: client}
}

func (g *CheckoutGuard) Acquire(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return g.client.SetNX(ctx, g.client.CheckoutLockKey(sessionID), time.Now().UTC().Format(time.RFC3339), ttl)
}

func (g *CheckoutGuard) Release(ctx context.Context, sessionID string) error {
	return g.client.Del(ctx, g.client.CheckoutLockKey(sessionID))
}
