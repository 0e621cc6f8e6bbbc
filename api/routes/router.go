package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sunkissed-southern/storefront/api/controllers"
	cartcontrollers "github.com/sunkissed-southern/storefront/api/controllers/cart"
	checkoutcontrollers "github.com/sunkissed-southern/storefront/api/controllers/checkout"
	"github.com/sunkissed-southern/storefront/api/middleware"
	"github.com/sunkissed-southern/storefront/internal/cart"
	checkoutsvc "github.com/sunkissed-southern/storefront/internal/checkout"
	"github.com/sunkissed-southern/storefront/pkg/config"
	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/storage"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store storage.Store,
	readiness map[string]controllers.Pinger,
	watcher middleware.IdentityObserver,
	salesProvider controllers.ActiveSales,
	checkoutService checkoutsvc.Service,
	counters middleware.CounterStore,
	counterKey func(parts ...string) string,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	cartOpts := cart.Options{
		StorageKey:  cfg.Cart.StorageKey,
		MaxQuantity: cfg.Cart.MaxQuantity,
		Logger:      logg,
	}
	couponPolicy := middleware.NewRateLimitPolicy(
		"coupon",
		cfg.RateLimit.CouponWindow,
		cfg.RateLimit.CouponLimit,
		counterKey,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.Session(store, cfg.App.IsProd(), logg),
			middleware.Auth(watcher, logg),
		)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartOpts, logg))
			r.Delete("/", cartcontrollers.CartClear(cartOpts, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartOpts, logg))
			r.Patch("/items", cartcontrollers.CartUpdateItem(cartOpts, logg))
			r.Delete("/items/{productID}/{variantID}", cartcontrollers.CartRemoveItem(cartOpts, logg))
			r.Get("/totals", checkoutcontrollers.Summary(checkoutService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(salesProvider, logg))
			r.Get("/price", controllers.SalesPrice(salesProvider, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.With(middleware.RateLimit(couponPolicy, counters, logg)).Post("/coupon", checkoutcontrollers.ApplyCoupon(checkoutService, logg))
			r.Delete("/coupon", checkoutcontrollers.RemoveCoupon(checkoutService, logg))
			r.Post("/", checkoutcontrollers.PlaceOrder(checkoutService, logg))
		})
	})

	return r
}
