package checkout

import (
	"net/http"

	"github.com/sunkissed-southern/storefront/api/controllers"
	"github.com/sunkissed-southern/storefront/api/responses"
	"github.com/sunkissed-southern/storefront/api/validators"
	checkoutsvc "github.com/sunkissed-southern/storefront/internal/checkout"
	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
	"github.com/sunkissed-southern/storefront/pkg/logger"
)

const maxCouponCodeLength = 64

type couponRequest struct {
	Code string `json:"code" validate:"notblank,max=64"`
}

type orderResponse struct {
	Message     string                    `json:"message"`
	OrderNumber string                    `json:"order_number"`
	Order       *checkoutsvc.Confirmation `json:"order"`
}

// Summary returns the priced cart, totals and applied coupon.
func Summary(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sess, err := controllers.SessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ApplyCoupon validates a code against the current subtotal and applies it.
func ApplyCoupon(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sess, err := controllers.SessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code := validators.SanitizeString(payload.Code, maxCouponCodeLength)
		summary, err := svc.ApplyCoupon(r.Context(), sess, code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// RemoveCoupon forgets the applied coupon.
func RemoveCoupon(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sess, err := controllers.SessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.RemoveCoupon(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// PlaceOrder submits the session's cart with the posted checkout form.
func PlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sess, err := controllers.SessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var form checkoutsvc.Form
		if err := validators.DecodeJSON(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmation, err := svc.PlaceOrder(r.Context(), sess, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderResponse{
			Message:     "Order placed successfully",
			OrderNumber: confirmation.OrderNumber,
			Order:       confirmation,
		})
	}
}
