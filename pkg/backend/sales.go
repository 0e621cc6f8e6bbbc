package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/pkg/types"
)

// SalesScope picks which sales listing to read.
type SalesScope string

const (
	// SalesScopePublic is the anonymous listing, already window-filtered by the API.
	SalesScopePublic SalesScope = "public"
	// SalesScopeAdmin lists every sale and needs an admin token.
	SalesScopeAdmin SalesScope = "admin"
)

func (s SalesScope) path() string {
	if s == SalesScopeAdmin {
		return pathAdminSales
	}
	return pathPublicSales
}

// SaleRecord is one sale as the API serializes it. The public listing
// calls the display name "title", the admin listing "name".
type SaleRecord struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name,omitempty"`
	Title         string           `json:"title,omitempty"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	StartDate     *types.Timestamp `json:"start_date,omitempty"`
	EndDate       *types.Timestamp `json:"end_date,omitempty"`
	Category      string           `json:"category,omitempty"`
	VariantIDs    []int64          `json:"variant_ids"`
}

// FetchSales lists sales for scope.
func (c *Client) FetchSales(ctx context.Context, token string, scope SalesScope) ([]SaleRecord, error) {
	var out []SaleRecord
	if err := c.do(ctx, http.MethodGet, scope.path(), nil, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type categoryProducts struct {
	Products []struct {
		ID       int64 `json:"id"`
		Variants []struct {
			ID int64 `json:"id"`
		} `json:"variants"`
	} `json:"products"`
}

// CategoryVariantIDs lists the variant ids of every active product in category.
func (c *Client) CategoryVariantIDs(ctx context.Context, category string) ([]int64, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, nil
	}
	var out categoryProducts
	if err := c.do(ctx, http.MethodGet, pathCategory+category, nil, "", nil, &out); err != nil {
		return nil, err
	}
	var ids []int64
	for _, p := range out.Products {
		for _, v := range p.Variants {
			ids = append(ids, v.ID)
		}
	}
	return ids, nil
}
