// Package checkout derives order totals from the cart, the active sales and
// the applied coupon, and submits orders to the commerce API.
package checkout

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/internal/cart"
	"github.com/sunkissed-southern/storefront/internal/coupons"
	"github.com/sunkissed-southern/storefront/internal/pricing"
	"github.com/sunkissed-southern/storefront/pkg/money"
)

// Totals is the order summary. Subtotal and Discount keep full precision so
// that rounding happens once, on Total; the JSON form renders all three in
// cents.
type Totals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	Total              decimal.Decimal `json:"total"`
	CouponCode         string          `json:"coupon_code,omitempty"`
	CouponApplied      bool            `json:"coupon_applied"`
	MinimumOrderNotMet bool            `json:"minimum_order_not_met,omitempty"`
}

func (t Totals) MarshalJSON() ([]byte, error) {
	type view Totals
	v := view(t)
	v.Subtotal = money.Round2(v.Subtotal)
	v.Discount = money.Round2(v.Discount)
	v.Total = money.Round2(v.Total)
	return json.Marshal(v)
}

// PricedLine is a cart line with the unit price checkout charges for it.
type PricedLine struct {
	cart.Item
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// UnitPrice is the price checkout charges per unit of item. Lines that kept
// their catalog price are re-priced against sales; lines without one keep
// the price captured at add time, which is already sale-adjusted.
func UnitPrice(item cart.Item, sales []pricing.Sale) decimal.Decimal {
	if item.OriginalPrice == nil {
		return item.Price
	}
	return pricing.DiscountedPrice(pricing.Variant{ID: item.VariantID, Price: item.OriginalPrice}, sales)
}

// PriceLines prices every line in order.
func PriceLines(items []cart.Item, sales []pricing.Sale) []PricedLine {
	out := make([]PricedLine, 0, len(items))
	for _, item := range items {
		unit := UnitPrice(item, sales)
		out = append(out, PricedLine{
			Item:      item,
			UnitPrice: unit,
			LineTotal: money.Round2(unit.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		})
	}
	return out
}

// ComputeTotals is pure: the same inputs always give the same Totals.
// An empty cart totals zero whatever coupon is applied, and a coupon whose
// minimum order value exceeds the subtotal contributes no discount.
func ComputeTotals(items []cart.Item, sales []pricing.Sale, coupon *coupons.Coupon) Totals {
	if len(items) == 0 {
		return Totals{Subtotal: money.Zero, Discount: money.Zero, Total: money.Zero}
	}

	subtotal := money.Zero
	for _, item := range items {
		subtotal = subtotal.Add(UnitPrice(item, sales).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	t := Totals{Subtotal: subtotal, Discount: money.Zero}
	if coupon != nil {
		if coupon.MeetsMinimum(subtotal) {
			t.Discount = coupon.DiscountFor(subtotal)
			t.CouponCode = coupon.Code
			t.CouponApplied = true
		} else {
			t.MinimumOrderNotMet = true
		}
	}
	t.Total = money.Round2(money.NonNegative(subtotal.Sub(t.Discount)))
	return t
}
