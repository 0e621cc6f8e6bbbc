package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sunkissed-southern/storefront/api/controllers"
	"github.com/sunkissed-southern/storefront/api/responses"
	"github.com/sunkissed-southern/storefront/api/validators"
	cartsvc "github.com/sunkissed-southern/storefront/internal/cart"
	"github.com/sunkissed-southern/storefront/pkg/logger"
)

// openCart loads the session's cart for one request.
func openCart(r *http.Request, opts cartsvc.Options) (*cartsvc.Cart, error) {
	sess, err := controllers.SessionFromRequest(r)
	if err != nil {
		return nil, err
	}
	return cartsvc.Open(r.Context(), sess.Store, opts)
}

// CartFetch returns the session's cart lines.
func CartFetch(opts cartsvc.Options, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := openCart(r, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

// CartAddItem merges a line into the cart.
func CartAddItem(opts cartsvc.Options, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := openCart(r, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.Add(r.Context(), payload.toItem()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

// CartUpdateItem sets the quantity of an existing line.
func CartUpdateItem(opts cartsvc.Options, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := openCart(r, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.UpdateQuantity(r.Context(), payload.ProductID, payload.VariantID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

// CartRemoveItem deletes the line addressed by the route.
func CartRemoveItem(opts cartsvc.Options, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParsePathID(chi.URLParam(r, "variantID"), "variantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := openCart(r, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.Remove(r.Context(), productID, variantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

// CartClear empties the cart.
func CartClear(opts cartsvc.Options, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := openCart(r, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := c.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}
