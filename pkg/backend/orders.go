package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sunkissed-southern/storefront/pkg/types"
)

// OrderLine is one cart line as the checkout endpoint expects it.
type OrderLine struct {
	ProductVariantID int64       `json:"product_variant_id"`
	Quantity         int         `json:"quantity"`
	UnitPrice        json.Number `json:"unit_price"`
}

// OrderRequest is the POST /api/checkout body. BillingAddress is sent as
// null when billing matches shipping.
type OrderRequest struct {
	Cart                  []OrderLine       `json:"cart"`
	PaymentInfo           types.PaymentInfo `json:"payment_info"`
	ShippingAddress       types.Address     `json:"shipping_address"`
	BillingSameAsShipping bool              `json:"billing_same_as_shipping"`
	BillingAddress        *types.Address    `json:"billing_address"`
	CouponCode            string            `json:"coupon_code"`
}

// OrderConfirmation is the success body of POST /api/checkout.
type OrderConfirmation struct {
	Message     string `json:"message"`
	OrderNumber string `json:"order_number"`
}

// PlaceOrder submits the order exactly once.
func (c *Client) PlaceOrder(ctx context.Context, token string, req OrderRequest) (*OrderConfirmation, error) {
	var out OrderConfirmation
	if err := c.do(ctx, http.MethodPost, pathCheckout, nil, token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
