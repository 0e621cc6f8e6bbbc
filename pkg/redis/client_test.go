package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sunkissed-southern/storefront/pkg/config"
	"github.com/sunkissed-southern/storefront/pkg/storage"
)

func TestStateStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := NewStateStore(&Client{store: mock}, time.Hour)

	if _, err := store.Get(ctx, "sess-1:cart"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, "sess-1:cart", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if mock.ttls["sks:state:sess-1:cart"] != time.Hour {
		t.Fatalf("expected ttl to be applied, got %v", mock.ttls)
	}
	raw, err := store.Get(ctx, "sess-1:cart")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(raw) != `{"version":1}` {
		t.Fatalf("unexpected payload %q", raw)
	}
	if err := store.Delete(ctx, "sess-1:cart"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "sess-1:cart"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.CheckoutLockKey("sess")

	ok, err := client.SetNX(ctx, key, "1", time.Second)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, key, "1", time.Second)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to lose, ok=%v err=%v", ok, err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.StateKey("abc:cart"); got != "sks:state:abc:cart" {
		t.Fatalf("unexpected state key %s", got)
	}
	if got := client.SalesKey("public"); got != "sks:sales:public" {
		t.Fatalf("unexpected sales key %s", got)
	}
	if got := client.CheckoutLockKey("abc"); got != "sks:checkout:in_flight:abc" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.RateLimitKey("coupon", "", "10.0.0.1"); got != "sks:rl:coupon:10.0.0.1" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
	if got := client.LockKey("janitor"); got != "sks:lock:janitor" {
		t.Fatalf("unexpected janitor lock key %s", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without connection should be a no-op, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected missing address to fail")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, ReadTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 || opts.ReadTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = stringify(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = stringify(value)
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	var current int64
	if v, ok := m.data[key]; ok {
		fmt.Sscan(v, &current)
	}
	current++
	m.data[key] = fmt.Sprint(current)
	return redis.NewIntResult(current, nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if _, ok := m.data[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func stringify(value any) string {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(value)
}

func TestSalesCache(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	cache := NewSalesCache(&Client{store: mock})

	if _, ok, err := cache.Load(ctx, "public"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := cache.Store(ctx, "public", []byte(`[]`), 0); err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, exists := mock.data["sks:sales:public"]; exists {
		t.Fatal("zero ttl must not cache")
	}
	if err := cache.Store(ctx, "public", []byte(`[{"id":1}]`), time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	raw, ok, err := cache.Load(ctx, "public")
	if err != nil || !ok || string(raw) != `[{"id":1}]` {
		t.Fatalf("unexpected load %q ok=%v err=%v", raw, ok, err)
	}
	if err := cache.Purge(ctx, "public"); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, ok, _ := cache.Load(ctx, "public"); ok {
		t.Fatal("expected purge to drop the entry")
	}
}

func TestCheckoutGuard(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	guard := NewCheckoutGuard(&Client{store: mock})

	ok, err := guard.Acquire(ctx, "sess", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected acquire, ok=%v err=%v", ok, err)
	}
	if mock.ttls["sks:checkout:in_flight:sess"] != 30*time.Second {
		t.Fatalf("expected ttl on guard key, got %v", mock.ttls)
	}
	if ok, _ := guard.Acquire(ctx, "sess", 30*time.Second); ok {
		t.Fatal("second acquire must fail while held")
	}
	if err := guard.Release(ctx, "sess"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := guard.Acquire(ctx, "sess", 30*time.Second); !ok {
		t.Fatal("acquire after release should succeed")
	}
}

func TestIncrWithTTLSetsExpiryOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.RateLimitKey("coupon", "sess")

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWithTTL(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
		if want == 1 {
			mock.ttls[key] = 0
		}
	}
	if mock.ttls[key] != 0 {
		t.Fatalf("ttl should only be set on the first increment, got %v", mock.ttls[key])
	}
}
