package controllers

import (
	"context"
	"net/http"

	"github.com/sunkissed-southern/storefront/api/responses"
	"github.com/sunkissed-southern/storefront/api/validators"
	"github.com/sunkissed-southern/storefront/internal/pricing"
	"github.com/sunkissed-southern/storefront/pkg/auth"
	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
	"github.com/sunkissed-southern/storefront/pkg/logger"
)

// ActiveSales lists the sales in effect for an identity.
type ActiveSales interface {
	Active(ctx context.Context, id auth.Identity) ([]pricing.Sale, error)
}

type salesResponse struct {
	Sales []pricing.Sale `json:"sales"`
}

// SalesList returns the sales active right now for the caller's scope.
func SalesList(src ActiveSales, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if src == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales provider unavailable"))
			return
		}
		sess, err := SessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sales, err := src.Active(r.Context(), sess.Identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if sales == nil {
			sales = []pricing.Sale{}
		}
		responses.WriteSuccess(w, salesResponse{Sales: sales})
	}
}

// SalesPrice quotes one variant against the active sales. Without a price
// parameter the variant has no catalog price and the quote is zero.
func SalesPrice(src ActiveSales, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if src == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales provider unavailable"))
			return
		}
		sess, err := SessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variantID, err := validators.ParseQueryID(r, "variant_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, hasPrice, err := validators.ParseQueryDecimal(r, "price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sales, err := src.Active(r.Context(), sess.Identity)
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "active sales unavailable; quoting catalog price")
			}
			sales = nil
		}

		variant := pricing.Variant{ID: variantID}
		if hasPrice {
			variant.Price = &price
		}
		responses.WriteSuccess(w, pricing.NewResolver(sales).Quote(variant))
	}
}
