package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/pkg/money"
)

type validateCouponRequest struct {
	Code     string      `json:"code"`
	Subtotal json.Number `json:"subtotal"`
}

// CouponValidation is the accepted-coupon body of POST /api/coupons/validate.
// Discount is already computed against the submitted subtotal; OriginalAmount
// is the configured coupon amount (a percentage for percent coupons).
type CouponValidation struct {
	Code           string           `json:"code"`
	Type           string           `json:"type"`
	Discount       decimal.Decimal  `json:"discount"`
	OriginalAmount *decimal.Decimal `json:"original_amount,omitempty"`
	MinOrderValue  decimal.Decimal  `json:"min_order_value"`
}

// ValidateCoupon submits code and subtotal for validation. The code is
// trimmed but its case is preserved.
func (c *Client) ValidateCoupon(ctx context.Context, token, code string, subtotal decimal.Decimal) (*CouponValidation, error) {
	body := validateCouponRequest{
		Code:     strings.TrimSpace(code),
		Subtotal: json.Number(money.Format2(subtotal)),
	}
	var out CouponValidation
	if err := c.do(ctx, http.MethodPost, pathValidateCoupon, nil, token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
