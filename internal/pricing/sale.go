package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/pkg/enums"
	"github.com/sunkissed-southern/storefront/pkg/types"
)

// Variant is the purchasable SKU as read from the catalog. Price is nil when
// the catalog omitted it.
type Variant struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"product_id"`
	Price     *decimal.Decimal `json:"price"`
	Color     string           `json:"color,omitempty"`
	Size      string           `json:"size,omitempty"`
	Quantity  int              `json:"quantity"`
}

// Sale is a scheduled discount rule. Category-targeted sales arrive with
// VariantIDs already resolved by the catalog.
type Sale struct {
	ID            int64                  `json:"id"`
	Name          string                 `json:"name,omitempty"`
	Title         string                 `json:"title,omitempty"`
	DiscountType  enums.SaleDiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal        `json:"discount_value"`
	StartDate     *types.Timestamp       `json:"start_date"`
	EndDate       *types.Timestamp       `json:"end_date"`
	Category      string                 `json:"category,omitempty"`
	VariantIDs    []int64                `json:"variant_ids"`
}

// DisplayName prefers the admin name, falling back to the public title.
func (s Sale) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Title
}

// ActiveAt reports whether t falls inside the sale window. Both bounds are
// inclusive and a nil bound is unbounded.
func (s Sale) ActiveAt(t time.Time) bool {
	if s.StartDate != nil && !s.StartDate.IsZero() && t.Before(s.StartDate.Time) {
		return false
	}
	if s.EndDate != nil && !s.EndDate.IsZero() && t.After(s.EndDate.Time) {
		return false
	}
	return true
}

// Targets reports whether the sale's allow-list contains variantID.
func (s Sale) Targets(variantID int64) bool {
	for _, id := range s.VariantIDs {
		if id == variantID {
			return true
		}
	}
	return false
}

// ActiveSales keeps the sales active at now, preserving input order.
func ActiveSales(sales []Sale, now time.Time) []Sale {
	active := make([]Sale, 0, len(sales))
	for _, sale := range sales {
		if sale.ActiveAt(now) {
			active = append(active, sale)
		}
	}
	return active
}
