// Package money holds the currency arithmetic shared by pricing and checkout.
//
// Amounts are currency-agnostic decimals. Rounding is to cents, half away
// from zero, so stored totals match the two-decimal figures customers see.
package money

import (
	"github.com/shopspring/decimal"
)

var (
	Zero    = decimal.Zero
	Hundred = decimal.NewFromInt(100)
)

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return Zero
	}
	return d
}

// Percent returns round2(base × pct / 100).
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(pct).Div(Hundred))
}

// Format2 renders d with exactly two decimals.
func Format2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FromCents converts an integer cent amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Cents returns the amount in whole cents after rounding.
func Cents(d decimal.Decimal) int64 {
	return Round2(d).Shift(2).IntPart()
}
