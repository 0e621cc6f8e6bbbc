package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sunkissed-southern/storefront/internal/cart"
	"github.com/sunkissed-southern/storefront/internal/coupons"
	"github.com/sunkissed-southern/storefront/internal/pricing"
	"github.com/sunkissed-southern/storefront/internal/session"
	"github.com/sunkissed-southern/storefront/pkg/auth"
	"github.com/sunkissed-southern/storefront/pkg/backend"
	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/metrics"
	"github.com/sunkissed-southern/storefront/pkg/money"
)

const defaultInFlightTTL = 30 * time.Second

type salesSource interface {
	Active(ctx context.Context, id auth.Identity) ([]pricing.Sale, error)
}

type orderAPI interface {
	PlaceOrder(ctx context.Context, token string, req backend.OrderRequest) (*backend.OrderConfirmation, error)
}

// Summary is the checkout view of a session: priced lines, totals and the
// applied coupon.
type Summary struct {
	Items  []PricedLine    `json:"items"`
	Totals Totals          `json:"totals"`
	Coupon *coupons.Coupon `json:"coupon,omitempty"`
}

// Confirmation is returned once the API has accepted an order.
type Confirmation struct {
	OrderNumber string       `json:"order_number"`
	Items       []PricedLine `json:"items"`
	Totals      Totals       `json:"totals"`
}

// Service ties the cart, sales, coupon and order placement together for one session at a time.
type Service interface {
	Summary(ctx context.Context, sess session.Session) (*Summary, error)
	ApplyCoupon(ctx context.Context, sess session.Session, code string) (*Summary, error)
	RemoveCoupon(ctx context.Context, sess session.Session) (*Summary, error)
	PlaceOrder(ctx context.Context, sess session.Session, form Form) (*Confirmation, error)
}

type ServiceParams struct {
	Sales       salesSource
	Coupons     coupons.Validator
	Orders      orderAPI
	Guard       InFlightGuard
	Metrics     *metrics.CheckoutMetrics
	Logger      *logger.Logger
	Cart        cart.Options
	InFlightTTL time.Duration
}

type service struct {
	sales       salesSource
	coupons     coupons.Validator
	orders      orderAPI
	guard       InFlightGuard
	metrics     *metrics.CheckoutMetrics
	logg        *logger.Logger
	cartOpts    cart.Options
	inFlightTTL time.Duration
	now         func() time.Time
}

func NewService(p ServiceParams) (Service, error) {
	if p.Sales == nil {
		return nil, fmt.Errorf("sales source required")
	}
	if p.Coupons == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("order api required")
	}
	if p.Guard == nil {
		p.Guard = NewMemoryGuard()
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.InFlightTTL <= 0 {
		p.InFlightTTL = defaultInFlightTTL
	}
	if p.Cart.Logger == nil {
		p.Cart.Logger = p.Logger
	}
	return &service{
		sales:       p.Sales,
		coupons:     p.Coupons,
		orders:      p.Orders,
		guard:       p.Guard,
		metrics:     p.Metrics,
		logg:        p.Logger,
		cartOpts:    p.Cart,
		inFlightTTL: p.InFlightTTL,
		now:         time.Now,
	}, nil
}

// activeSales degrades to no sales when the listing cannot be fetched, so
// prices fall back to catalog prices instead of failing the request.
func (s *service) activeSales(ctx context.Context, sess session.Session) []pricing.Sale {
	sales, err := s.sales.Active(ctx, sess.Identity)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "active sales unavailable; pricing without sales")
		return nil
	}
	return sales
}

func (s *service) load(ctx context.Context, sess session.Session) ([]cart.Item, []pricing.Sale, *coupons.Coupon, error) {
	c, err := cart.Open(ctx, sess.Store, s.cartOpts)
	if err != nil {
		return nil, nil, nil, err
	}
	applied, err := coupons.NewState(sess.Store).Applied(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return c.Items(), s.activeSales(ctx, sess), applied, nil
}

func summarize(items []cart.Item, sales []pricing.Sale, applied *coupons.Coupon) *Summary {
	return &Summary{
		Items:  PriceLines(items, sales),
		Totals: ComputeTotals(items, sales, applied),
		Coupon: applied,
	}
}

func (s *service) Summary(ctx context.Context, sess session.Session) (*Summary, error) {
	items, sales, applied, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return summarize(items, sales, applied), nil
}

// ApplyCoupon validates code against the current subtotal and, when
// accepted, makes it the session's coupon. Any rejection clears the
// previously applied coupon and leaves the cart untouched.
func (s *service) ApplyCoupon(ctx context.Context, sess session.Session, code string) (*Summary, error) {
	items, sales, _, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	state := coupons.NewState(sess.Store)
	subtotal := ComputeTotals(items, sales, nil).Subtotal

	ctx = s.logg.WithField(ctx, "coupon_code", coupons.NormalizeCode(code))
	accepted, err := s.coupons.Validate(ctx, sess.Identity.Token, code, subtotal)
	if err != nil {
		if coupons.IsRejection(err) {
			s.metrics.IncCouponValidation(metrics.CouponRejected)
			if clearErr := state.Clear(ctx); clearErr != nil {
				return nil, clearErr
			}
			return nil, err
		}
		s.metrics.IncCouponValidation(metrics.CouponError)
		return nil, err
	}

	if !accepted.MeetsMinimum(subtotal) {
		s.metrics.IncCouponValidation(metrics.CouponMinimumNotMet)
		if err := state.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, minimumNotMet(accepted)
	}

	if err := state.Apply(ctx, *accepted); err != nil {
		return nil, err
	}
	s.metrics.IncCouponValidation(metrics.CouponAccepted)
	s.logg.Info(ctx, "coupon applied")
	return summarize(items, sales, accepted), nil
}

func minimumNotMet(c *coupons.Coupon) error {
	minimum := money.Format2(c.MinOrderValue)
	return pkgerrors.New(pkgerrors.CodeValidation, "Coupon requires a minimum order of $"+minimum).
		WithDetails(map[string]any{"min_order_value": minimum})
}

func (s *service) RemoveCoupon(ctx context.Context, sess session.Session) (*Summary, error) {
	if err := coupons.NewState(sess.Store).Clear(ctx); err != nil {
		return nil, err
	}
	return s.Summary(ctx, sess)
}

// PlaceOrder submits the session's cart once. On success the cart is
// cleared and the coupon forgotten; on failure both are kept and the API's
// message is returned unchanged.
func (s *service) PlaceOrder(ctx context.Context, sess session.Session, form Form) (*Confirmation, error) {
	if err := ValidateForm(form); err != nil {
		s.metrics.IncOrderFailure("invalid_form")
		return nil, err
	}

	acquired, err := s.guard.Acquire(ctx, sess.ID, s.inFlightTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout guard")
	}
	if !acquired {
		s.metrics.IncOrderFailure("in_flight")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an order is already being placed for this session")
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), sess.ID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "release checkout guard failed")
		}
	}()

	c, err := cart.Open(ctx, sess.Store, s.cartOpts)
	if err != nil {
		return nil, err
	}
	items := c.Items()
	if len(items) == 0 {
		s.metrics.IncOrderFailure("empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Your cart is empty.")
	}
	state := coupons.NewState(sess.Store)
	applied, err := state.Applied(ctx)
	if err != nil {
		return nil, err
	}
	sales := s.activeSales(ctx, sess)

	lines := PriceLines(items, sales)
	totals := ComputeTotals(items, sales, applied)
	req := BuildOrderRequest(lines, form, totals)

	started := s.now()
	res, err := s.orders.PlaceOrder(ctx, sess.Identity.Token, req)
	s.metrics.ObservePlacement(s.now().Sub(started))
	if err != nil {
		reason := "error"
		if typed := pkgerrors.As(err); typed != nil {
			reason = strings.ToLower(string(typed.Code()))
		}
		s.metrics.IncOrderFailure(reason)
		s.logg.Error(s.logg.WithField(ctx, "reason", reason), "order placement failed", err)
		return nil, err
	}

	s.metrics.IncOrderPlaced()
	ctx = s.logg.WithOrderNumber(ctx, res.OrderNumber)
	s.logg.Info(ctx, "order placed")

	if err := c.Clear(ctx); err != nil {
		s.logg.Error(ctx, "order placed but cart could not be cleared", err)
	}
	if err := state.Clear(ctx); err != nil {
		s.logg.Error(ctx, "order placed but coupon could not be cleared", err)
	}

	return &Confirmation{
		OrderNumber: res.OrderNumber,
		Items:       lines,
		Totals:      totals,
	}, nil
}
