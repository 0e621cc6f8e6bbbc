package enums

import (
	"fmt"
	"strings"
)

// SaleDiscountType selects how a sale adjusts a variant's base price.
type SaleDiscountType string

const (
	SaleDiscountPercent SaleDiscountType = "percent"
	SaleDiscountAmount  SaleDiscountType = "amount"
)

var validSaleDiscountTypes = []SaleDiscountType{
	SaleDiscountPercent,
	SaleDiscountAmount,
}

// String implements fmt.Stringer.
func (s SaleDiscountType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleDiscountType.
func (s SaleDiscountType) IsValid() bool {
	for _, candidate := range validSaleDiscountTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSaleDiscountType converts raw input into a SaleDiscountType.
func ParseSaleDiscountType(value string) (SaleDiscountType, error) {
	for _, candidate := range validSaleDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale discount type %q", value)
}

// CouponType selects how a coupon adjusts the order subtotal.
type CouponType string

const (
	CouponPercent CouponType = "percent"
	CouponFixed   CouponType = "fixed"
)

// String implements fmt.Stringer.
func (c CouponType) String() string {
	return string(c)
}

// IsPercent matches case-insensitively; the API has sent "Percent" before.
func (c CouponType) IsPercent() bool {
	return strings.EqualFold(strings.TrimSpace(string(c)), string(CouponPercent))
}
