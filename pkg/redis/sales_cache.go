package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SalesCache keeps serialized sales listings under sks:sales:<scope>.
type SalesCache struct {
	client *Client
}

func NewSalesCache(client *Client) *SalesCache {
	return &SalesCache{client: client}
}

func (s *SalesCache) Load(ctx context.Context, scope string) ([]byte, bool, error) {
	raw, err := s.client.GetBytes(ctx, s.client.SalesKey(scope))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *SalesCache) Store(ctx context.Context, scope string, raw []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.client.SalesKey(scope), raw, ttl)
}

func (s *SalesCache) Purge(ctx context.Context, scope string) error {
	return s.client.Del(ctx, s.client.SalesKey(scope))
}
