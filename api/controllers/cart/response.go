package cart

import (
	cartsvc "github.com/sunkissed-southern/storefront/internal/cart"
)

type cartView struct {
	Items       []cartsvc.Item `json:"items"`
	Count       int            `json:"count"`
	Revision    int64          `json:"revision"`
	MaxQuantity int            `json:"max_quantity"`
}

func newCartView(c *cartsvc.Cart) cartView {
	return cartView{
		Items:       c.Items(),
		Count:       c.Count(),
		Revision:    c.Revision(),
		MaxQuantity: c.MaxQuantity(),
	}
}
