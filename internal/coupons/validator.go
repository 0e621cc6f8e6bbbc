package coupons

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/pkg/backend"
	"github.com/sunkissed-southern/storefront/pkg/enums"
	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
)

type couponAPI interface {
	ValidateCoupon(ctx context.Context, token, code string, subtotal decimal.Decimal) (*backend.CouponValidation, error)
}

// Validator checks codes with the commerce API. Every call goes to the
// network; nothing is cached.
type Validator interface {
	Validate(ctx context.Context, token, code string, subtotal decimal.Decimal) (*Coupon, error)
}

type validator struct {
	api couponAPI
}

func NewValidator(api couponAPI) (Validator, error) {
	if api == nil {
		return nil, fmt.Errorf("coupon api required")
	}
	return &validator{api: api}, nil
}

func (v *validator) Validate(ctx context.Context, token, code string, subtotal decimal.Decimal) (*Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	res, err := v.api.ValidateCoupon(ctx, token, code, subtotal)
	if err != nil {
		return nil, err
	}

	amount := res.Discount
	if res.OriginalAmount != nil {
		amount = *res.OriginalAmount
	}
	accepted := res.Code
	if accepted == "" {
		accepted = code
	}
	return &Coupon{
		Code:           accepted,
		Type:           enums.CouponType(res.Type),
		Amount:         amount,
		MinOrderValue:  res.MinOrderValue,
		QuotedDiscount: res.Discount,
	}, nil
}

// IsRejection reports whether err is the API turning the code down (unknown,
// expired or minimum not met) rather than a transport or server failure.
func IsRejection(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeValidation)
}
