package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Key is the natural identity of a cart line.
type Key struct {
	ProductID int64
	VariantID int64
}

// Item is one cart line. Price is the unit price captured when the line was
// added (already sale-adjusted); OriginalPrice, when present, is the variant's
// catalog price before any sale.
type Item struct {
	ProductID     int64            `json:"productId"`
	VariantID     int64            `json:"variantId"`
	Name          string           `json:"name"`
	Image         string           `json:"image,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Size          string           `json:"size,omitempty"`
	Color         string           `json:"color,omitempty"`
	Quantity      int              `json:"quantity"`
}

func (i Item) Key() Key {
	return Key{ProductID: i.ProductID, VariantID: i.VariantID}
}

// LineTotal is the captured unit price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i Item) clone() Item {
	out := i
	if i.OriginalPrice != nil {
		op := *i.OriginalPrice
		out.OriginalPrice = &op
	}
	out.Name = strings.TrimSpace(i.Name)
	return out
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for idx, item := range items {
		out[idx] = item.clone()
	}
	return out
}

func sameLines(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if a[idx].Key() != b[idx].Key() || a[idx].Quantity != b[idx].Quantity || !a[idx].Price.Equal(b[idx].Price) {
			return false
		}
	}
	return true
}
