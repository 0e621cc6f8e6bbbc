// Package coupons validates coupon codes against the commerce API and keeps
// the coupon a session has applied.
package coupons

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/pkg/enums"
	"github.com/sunkissed-southern/storefront/pkg/money"
)

// Coupon is an accepted coupon. Amount is the configured value (a percentage
// for percent coupons, a currency amount otherwise); QuotedDiscount is what
// the API computed for the subtotal it was shown.
type Coupon struct {
	Code           string           `json:"code"`
	Type           enums.CouponType `json:"type"`
	Amount         decimal.Decimal  `json:"amount"`
	MinOrderValue  decimal.Decimal  `json:"min_order_value"`
	QuotedDiscount decimal.Decimal  `json:"quoted_discount"`
}

// MeetsMinimum reports whether subtotal satisfies the coupon's minimum order value.
func (c Coupon) MeetsMinimum(subtotal decimal.Decimal) bool {
	return !subtotal.LessThan(c.MinOrderValue)
}

// DiscountFor is the discount this coupon grants on subtotal, before the
// minimum-order check: round2(subtotal × amount / 100) for percent coupons,
// the raw amount otherwise.
func (c Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	if c.Type.IsPercent() {
		return money.Percent(subtotal, c.Amount)
	}
	return c.Amount
}

// NormalizeCode trims surrounding whitespace. Case is preserved; the API
// decides whether codes are case-sensitive.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}
