package cart

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/sunkissed-southern/storefront/internal/cart"
)

// addItemRequest mirrors the stored line shape so clients can post what
// they display.
type addItemRequest struct {
	ProductID     int64            `json:"productId" validate:"required,gt=0"`
	VariantID     int64            `json:"variantId" validate:"required,gt=0"`
	Name          string           `json:"name" validate:"notblank,max=255"`
	Image         string           `json:"image,omitempty" validate:"max=2048"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Size          string           `json:"size,omitempty" validate:"max=64"`
	Color         string           `json:"color,omitempty" validate:"max=64"`
	Quantity      int              `json:"quantity" validate:"required,min=1"`
}

func (r addItemRequest) toItem() cartsvc.Item {
	return cartsvc.Item{
		ProductID:     r.ProductID,
		VariantID:     r.VariantID,
		Name:          r.Name,
		Image:         r.Image,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Size:          r.Size,
		Color:         r.Color,
		Quantity:      r.Quantity,
	}
}

// updateItemRequest sets a line's quantity; zero removes the line.
type updateItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	VariantID int64 `json:"variantId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"min=0"`
}
