package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Coupon validation outcomes.
const (
	CouponAccepted      = "accepted"
	CouponRejected      = "rejected"
	CouponMinimumNotMet = "minimum_not_met"
	CouponError         = "error"
)

// CheckoutMetrics records coupon and order placement activity.
type CheckoutMetrics struct {
	couponValidations *prometheus.CounterVec
	ordersPlaced      prometheus.Counter
	orderFailures     *prometheus.CounterVec
	placementLatency  prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op collector.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	couponValidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_coupon_validations_total",
		Help: "Coupon validation attempts by outcome.",
	}, []string{"outcome"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders accepted by the commerce backend.",
	})
	orderFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_failures_total",
		Help: "Order placement failures by reason.",
	}, []string{"reason"})
	placementLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_placement_seconds",
		Help:    "Latency of order placement calls in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(couponValidations, ordersPlaced, orderFailures, placementLatency)
	return &CheckoutMetrics{
		couponValidations: couponValidations,
		ordersPlaced:      ordersPlaced,
		orderFailures:     orderFailures,
		placementLatency:  placementLatency,
	}
}

func (m *CheckoutMetrics) IncCouponValidation(outcome string) {
	if m == nil || m.couponValidations == nil {
		return
	}
	m.couponValidations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *CheckoutMetrics) IncOrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *CheckoutMetrics) IncOrderFailure(reason string) {
	if m == nil || m.orderFailures == nil {
		return
	}
	m.orderFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *CheckoutMetrics) ObservePlacement(d time.Duration) {
	if m == nil || m.placementLatency == nil {
		return
	}
	m.placementLatency.Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
