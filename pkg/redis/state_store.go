package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sunkissed-southern/storefront/pkg/storage"
)

// StateStore exposes the client as a storage.Store under the state prefix.
// Every write refreshes the TTL so idle sessions eventually expire.
type StateStore struct {
	client *Client
	ttl    time.Duration
}

var _ storage.Store = (*StateStore)(nil)

func NewStateStore(client *Client, ttl time.Duration) *StateStore {
	return &StateStore{client: client, ttl: ttl}
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.GetBytes(ctx, s.client.StateKey(key))
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.client.StateKey(key), value, s.ttl)
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.client.StateKey(key))
}

func (s *StateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
