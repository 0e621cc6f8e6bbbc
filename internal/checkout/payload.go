package checkout

import (
	"encoding/json"

	"github.com/sunkissed-southern/storefront/pkg/backend"
	"github.com/sunkissed-southern/storefront/pkg/money"
)

// BuildOrderRequest turns priced lines and the form into the checkout body.
// Unit prices are sent with two decimals; the coupon code is sent only when
// it contributed to the totals.
func BuildOrderRequest(lines []PricedLine, form Form, totals Totals) backend.OrderRequest {
	req := backend.OrderRequest{
		Cart:                  make([]backend.OrderLine, 0, len(lines)),
		PaymentInfo:           form.PaymentInfo,
		ShippingAddress:       form.ShippingAddress.Trimmed(),
		BillingSameAsShipping: form.BillingSameAsShipping,
	}
	for _, line := range lines {
		req.Cart = append(req.Cart, backend.OrderLine{
			ProductVariantID: line.VariantID,
			Quantity:         line.Quantity,
			UnitPrice:        json.Number(money.Format2(line.UnitPrice)),
		})
	}
	if !form.BillingSameAsShipping && form.BillingAddress != nil {
		billing := form.BillingAddress.Trimmed()
		req.BillingAddress = &billing
	}
	if totals.CouponApplied {
		req.CouponCode = totals.CouponCode
	}
	return req
}
