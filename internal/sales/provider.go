// Package sales supplies the sales currently in effect to the pricing core.
package sales

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sunkissed-southern/storefront/internal/pricing"
	"github.com/sunkissed-southern/storefront/pkg/auth"
	"github.com/sunkissed-southern/storefront/pkg/backend"
	"github.com/sunkissed-southern/storefront/pkg/enums"
	"github.com/sunkissed-southern/storefront/pkg/logger"
)

type salesAPI interface {
	FetchSales(ctx context.Context, token string, scope backend.SalesScope) ([]backend.SaleRecord, error)
	CategoryVariantIDs(ctx context.Context, category string) ([]int64, error)
}

// Provider fetches, expands and caches sales. Concurrent misses for the
// same scope share one upstream call.
type Provider struct {
	api   salesAPI
	cache Cache
	ttl   time.Duration
	logg  *logger.Logger
	now   func() time.Time
	group singleflight.Group
}

type Options struct {
	Cache  Cache
	TTL    time.Duration
	Logger *logger.Logger
}

func NewProvider(api salesAPI, opts Options) (*Provider, error) {
	if api == nil {
		return nil, fmt.Errorf("sales api required")
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Provider{
		api:   api,
		cache: opts.Cache,
		ttl:   opts.TTL,
		logg:  opts.Logger,
		now:   time.Now,
	}, nil
}

// ScopeFor picks the listing an identity may read. Admins read every sale
// and filter the window here; everyone else reads the public listing.
func ScopeFor(id auth.Identity) backend.SalesScope {
	if id.Authenticated() && id.IsAdmin() {
		return backend.SalesScopeAdmin
	}
	return backend.SalesScopePublic
}

// CacheKey names the cache entry an identity reads. The public listing is
// shared. Admin listings are keyed by a digest of the bearer token, so a
// cached admin listing is only served to a token the commerce API already
// accepted for that listing.
func CacheKey(id auth.Identity) string {
	scope := ScopeFor(id)
	if scope != backend.SalesScopeAdmin {
		return string(scope)
	}
	sum := sha256.Sum256([]byte(id.Token))
	return string(scope) + ":" + hex.EncodeToString(sum[:16])
}

// Active returns the sales in effect now, in listing order.
func (p *Provider) Active(ctx context.Context, id auth.Identity) ([]pricing.Sale, error) {
	all, err := p.All(ctx, id)
	if err != nil {
		return nil, err
	}
	return pricing.ActiveSales(all, p.now()), nil
}

// All returns the full listing for the identity's scope, cached.
func (p *Provider) All(ctx context.Context, id auth.Identity) ([]pricing.Sale, error) {
	scope := ScopeFor(id)
	key := CacheKey(id)
	if cached, ok := p.loadCached(ctx, key); ok {
		return cached, nil
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		return p.fetch(ctx, id.Token, scope, key)
	})
	if err != nil {
		return nil, err
	}
	return cloneSales(v.([]pricing.Sale)), nil
}

// Invalidate drops the cached listing stored under key (see CacheKey).
func (p *Provider) Invalidate(ctx context.Context, key string) error {
	return p.cache.Purge(ctx, key)
}

func (p *Provider) loadCached(ctx context.Context, key string) ([]pricing.Sale, bool) {
	raw, ok, err := p.cache.Load(ctx, key)
	if err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "sales cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var out []pricing.Sale
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (p *Provider) fetch(ctx context.Context, token string, scope backend.SalesScope, key string) ([]pricing.Sale, error) {
	records, err := p.api.FetchSales(ctx, token, scope)
	if err != nil {
		return nil, err
	}

	out := make([]pricing.Sale, 0, len(records))
	for _, rec := range records {
		sale := toSale(rec)
		if len(sale.VariantIDs) == 0 && sale.Category != "" {
			ids, err := p.api.CategoryVariantIDs(ctx, sale.Category)
			if err != nil {
				logCtx := p.logg.WithFields(ctx, map[string]any{
					"sale_id":  sale.ID,
					"category": sale.Category,
					"error":    err.Error(),
				})
				p.logg.Warn(logCtx, "category expansion failed; sale applies to no variants")
			}
			sale.VariantIDs = ids
		}
		out = append(out, sale)
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := p.cache.Store(ctx, key, raw, p.ttl); err != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "sales cache write failed")
		}
	}
	return out, nil
}

func toSale(rec backend.SaleRecord) pricing.Sale {
	return pricing.Sale{
		ID:            rec.ID,
		Name:          rec.Name,
		Title:         rec.Title,
		DiscountType:  enums.SaleDiscountType(rec.DiscountType),
		DiscountValue: rec.DiscountValue,
		StartDate:     rec.StartDate,
		EndDate:       rec.EndDate,
		Category:      rec.Category,
		VariantIDs:    append([]int64(nil), rec.VariantIDs...),
	}
}

func cloneSales(in []pricing.Sale) []pricing.Sale {
	out := make([]pricing.Sale, len(in))
	for i, s := range in {
		s.VariantIDs = append([]int64(nil), s.VariantIDs...)
		out[i] = s
	}
	return out
}
