package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/pkg/enums"
	"github.com/sunkissed-southern/storefront/pkg/money"
)

// ResolveSale returns the first sale, in slice order, targeting variantID.
// The first match wins even when a later sale would be cheaper.
func ResolveSale(variantID int64, sales []Sale) *Sale {
	for i := range sales {
		if sales[i].Targets(variantID) {
			return &sales[i]
		}
	}
	return nil
}

// DiscountedPrice returns the unit price of v after the applicable sale.
// A variant without a price prices at zero.
func DiscountedPrice(v Variant, sales []Sale) decimal.Decimal {
	if v.Price == nil {
		return money.Zero
	}
	return ApplySale(*v.Price, ResolveSale(v.ID, sales))
}

// ApplySale computes the sale price for a base price. Unknown discount types
// and out-of-range values leave the base price unchanged.
func ApplySale(price decimal.Decimal, sale *Sale) decimal.Decimal {
	if sale == nil {
		return price
	}
	value := sale.DiscountValue
	if value.IsNegative() {
		return price
	}

	switch sale.DiscountType {
	case enums.SaleDiscountPercent:
		if value.GreaterThan(money.Hundred) {
			return price
		}
		factor := decimal.NewFromInt(1).Sub(value.Div(money.Hundred))
		return money.Round2(price.Mul(factor))
	case enums.SaleDiscountAmount:
		return money.NonNegative(money.Round2(price.Sub(value)))
	}
	return price
}

// Quote is a display-ready price for one variant.
type Quote struct {
	VariantID     int64           `json:"variant_id"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Price         decimal.Decimal `json:"price"`
	OnSale        bool            `json:"on_sale"`
	SaleID        *int64          `json:"sale_id,omitempty"`
	SaleName      string          `json:"sale_name,omitempty"`
}

// Resolver binds a fixed, already time-filtered list of sales so every
// caller prices variants the same way.
type Resolver struct {
	sales []Sale
}

// NewResolver copies sales so later mutation by the caller has no effect.
func NewResolver(sales []Sale) *Resolver {
	copied := make([]Sale, len(sales))
	copy(copied, sales)
	return &Resolver{sales: copied}
}

// Sales returns the bound sales.
func (r *Resolver) Sales() []Sale {
	if r == nil {
		return nil
	}
	return r.sales
}

// SaleFor is ResolveSale over the bound sales.
func (r *Resolver) SaleFor(variantID int64) *Sale {
	if r == nil {
		return nil
	}
	return ResolveSale(variantID, r.sales)
}

// Price is DiscountedPrice over the bound sales.
func (r *Resolver) Price(v Variant) decimal.Decimal {
	return DiscountedPrice(v, r.Sales())
}

// Quote prices v and reports which sale, if any, produced the price.
func (r *Resolver) Quote(v Variant) Quote {
	q := Quote{VariantID: v.ID}
	if v.Price == nil {
		return q
	}
	q.OriginalPrice = *v.Price
	sale := r.SaleFor(v.ID)
	q.Price = ApplySale(*v.Price, sale)
	if sale != nil && q.Price.LessThan(q.OriginalPrice) {
		id := sale.ID
		q.OnSale = true
		q.SaleID = &id
		q.SaleName = sale.DisplayName()
	}
	return q
}
