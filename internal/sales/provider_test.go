package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/pkg/auth"
	"github.com/sunkissed-southern/storefront/pkg/backend"
	"github.com/sunkissed-southern/storefront/pkg/types"
)

type stubSalesAPI struct {
	mu         sync.Mutex
	records    map[backend.SalesScope][]backend.SaleRecord
	categories map[string][]int64
	fetches    int
	tokens     []string
	err        error
}

func (s *stubSalesAPI) FetchSales(_ context.Context, token string, scope backend.SalesScope) ([]backend.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return nil, s.err
	}
	return s.records[scope], nil
}

func (s *stubSalesAPI) CategoryVariantIDs(_ context.Context, category string) ([]int64, error) {
	ids, ok := s.categories[category]
	if !ok {
		return nil, errors.New("unknown category")
	}
	return ids, nil
}

func ts(t *testing.T, raw string) *types.Timestamp {
	t.Helper()
	parsed, err := types.ParseTimestamp(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return &parsed
}

func TestActiveFiltersWindowAndExpandsCategories(t *testing.T) {
	api := &stubSalesAPI{
		records: map[backend.SalesScope][]backend.SaleRecord{
			backend.SalesScopePublic: {
				{ID: 1, Title: "Tops", DiscountType: "percent", DiscountValue: decimal.NewFromInt(20), Category: "tops"},
				{ID: 2, Title: "Expired", DiscountType: "amount", DiscountValue: decimal.NewFromInt(5), EndDate: ts(t, "2024-01-01T00:00:00"), VariantIDs: []int64{9}},
				{ID: 3, Title: "Hats", DiscountType: "amount", DiscountValue: decimal.NewFromInt(2), VariantIDs: []int64{30}},
				{ID: 4, Title: "Ghost", DiscountType: "amount", DiscountValue: decimal.NewFromInt(2), Category: "missing"},
			},
		},
		categories: map[string][]int64{"tops": {10, 11}},
	}
	p, err := NewProvider(api, Options{TTL: time.Minute})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	p.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	active, err := p.Active(context.Background(), auth.Identity{})
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 active sales, got %d", len(active))
	}
	if active[0].ID != 1 || len(active[0].VariantIDs) != 2 || !active[0].Targets(11) {
		t.Fatalf("expected category expanded to variants, got %+v", active[0])
	}
	if active[1].ID != 3 {
		t.Fatalf("expected listing order preserved, got %d", active[1].ID)
	}
	if len(active[2].VariantIDs) != 0 {
		t.Fatalf("failed expansion should target nothing, got %v", active[2].VariantIDs)
	}
}

func TestActiveUsesCacheUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	api := &stubSalesAPI{records: map[backend.SalesScope][]backend.SaleRecord{
		backend.SalesScopePublic: {{ID: 1, DiscountType: "percent", DiscountValue: decimal.NewFromInt(10), VariantIDs: []int64{1}}},
	}}
	p, _ := NewProvider(api, Options{TTL: time.Minute})

	for i := 0; i < 3; i++ {
		if _, err := p.Active(ctx, auth.Identity{}); err != nil {
			t.Fatalf("active: %v", err)
		}
	}
	if api.fetches != 1 {
		t.Fatalf("expected one upstream fetch, got %d", api.fetches)
	}
	if err := p.Invalidate(ctx, CacheKey(auth.Identity{})); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := p.Active(ctx, auth.Identity{}); err != nil {
		t.Fatalf("active: %v", err)
	}
	if api.fetches != 2 {
		t.Fatalf("expected refetch after invalidation, got %d", api.fetches)
	}
}

func TestAdminScope(t *testing.T) {
	api := &stubSalesAPI{records: map[backend.SalesScope][]backend.SaleRecord{
		backend.SalesScopeAdmin: {{ID: 7, Name: "Internal", DiscountType: "amount", DiscountValue: decimal.NewFromInt(1), VariantIDs: []int64{1}}},
	}}
	p, _ := NewProvider(api, Options{})
	admin := auth.Identity{Token: "t", Subject: "1", Role: "admin"}

	if ScopeFor(admin) != backend.SalesScopeAdmin || ScopeFor(auth.Identity{Token: "t", Subject: "2"}) != backend.SalesScopePublic {
		t.Fatal("unexpected scope selection")
	}
	all, err := p.All(context.Background(), admin)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 || all[0].DisplayName() != "Internal" {
		t.Fatalf("unexpected admin listing %+v", all)
	}
	if api.tokens[0] != "t" {
		t.Fatalf("expected token forwarded, got %v", api.tokens)
	}
}

func TestAdminListingIsCachedPerToken(t *testing.T) {
	ctx := context.Background()
	api := &stubSalesAPI{records: map[backend.SalesScope][]backend.SaleRecord{
		backend.SalesScopeAdmin: {{ID: 7, DiscountType: "amount", DiscountValue: decimal.NewFromInt(1), VariantIDs: []int64{1}}},
	}}
	p, _ := NewProvider(api, Options{TTL: time.Minute})
	real := auth.Identity{Token: "real-admin-token", Subject: "1", Role: "admin"}
	forged := auth.Identity{Token: "forged-token", Subject: "1", Role: "admin"}

	if CacheKey(real) == CacheKey(forged) {
		t.Fatal("distinct admin tokens must not share a cache entry")
	}
	if CacheKey(auth.Identity{}) != string(backend.SalesScopePublic) {
		t.Fatalf("public listing should use the shared key, got %q", CacheKey(auth.Identity{}))
	}

	if _, err := p.All(ctx, real); err != nil {
		t.Fatalf("all: %v", err)
	}
	if _, err := p.All(ctx, real); err != nil {
		t.Fatalf("all: %v", err)
	}
	if api.fetches != 1 {
		t.Fatalf("expected same token served from cache, got %d fetches", api.fetches)
	}

	api.err = errors.New("forbidden")
	if _, err := p.All(ctx, forged); err == nil {
		t.Fatal("expected a forged admin token to reach the commerce api and fail")
	}
	if api.fetches != 2 || api.tokens[1] != "forged-token" {
		t.Fatalf("expected forged token forwarded upstream, got %v", api.tokens)
	}
}

func TestFetchErrorIsReturned(t *testing.T) {
	api := &stubSalesAPI{err: errors.New("down")}
	p, _ := NewProvider(api, Options{TTL: time.Minute})
	if _, err := p.Active(context.Background(), auth.Identity{}); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	_ = c.Store(ctx, "public", []byte("x"), time.Second)
	if _, ok, _ := c.Load(ctx, "public"); !ok {
		t.Fatal("expected hit")
	}
	c.now = func() time.Time { return base.Add(time.Second) }
	if _, ok, _ := c.Load(ctx, "public"); ok {
		t.Fatal("expected expiry at ttl")
	}
	_ = c.Store(ctx, "public", []byte("x"), 0)
	if _, ok, _ := c.Load(ctx, "public"); ok {
		t.Fatal("zero ttl must not cache")
	}
}

func TestMemoryCachePurgeExpired(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	_ = c.Store(ctx, "public", []byte("x"), time.Second)
	_ = c.Store(ctx, "admin", []byte("y"), time.Hour)

	c.now = func() time.Time { return base.Add(time.Minute) }
	removed, err := c.PurgeExpired(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("expected one purged entry, got %d (%v)", removed, err)
	}
	if _, ok, _ := c.Load(ctx, "admin"); !ok {
		t.Fatal("unexpired scope should survive a purge")
	}
}
