package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/api/routes"
	"github.com/sunkissed-southern/storefront/internal/cart"
	"github.com/sunkissed-southern/storefront/internal/checkout"
	"github.com/sunkissed-southern/storefront/internal/coupons"
	"github.com/sunkissed-southern/storefront/internal/cron"
	"github.com/sunkissed-southern/storefront/internal/sales"
	"github.com/sunkissed-southern/storefront/internal/session"
	"github.com/sunkissed-southern/storefront/pkg/backend"
	"github.com/sunkissed-southern/storefront/pkg/config"
	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/metrics"
)

const (
	serviceName     = "storefront"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	// Storefront clients read prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	janitorMetrics := metrics.NewJanitorMetrics(registry)

	deps, err := newInfra(ctx, cfg, logg, janitorMetrics)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	api, err := backend.New(cfg.Backend, nil, logg)
	if err != nil {
		logg.Error(ctx, "failed to create backend client", err)
		os.Exit(1)
	}
	provider, err := sales.NewProvider(api, sales.Options{
		Cache:  deps.salesCache,
		TTL:    cfg.Sales.CacheTTL,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create sales provider", err)
		os.Exit(1)
	}
	validator, err := coupons.NewValidator(api)
	if err != nil {
		logg.Error(ctx, "failed to create coupon validator", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Sales:   provider,
		Coupons: validator,
		Orders:  api,
		Guard:   deps.guard,
		Metrics: metrics.NewCheckoutMetrics(registry),
		Logger:  logg,
		Cart: cart.Options{
			StorageKey:  cfg.Cart.StorageKey,
			MaxQuantity: cfg.Cart.MaxQuantity,
			Logger:      logg,
		},
		InFlightTTL: cfg.Checkout.InFlightTTL,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	if cfg.Janitor.Enabled && len(deps.janitorJobs) > 0 {
		janitor, err := cron.NewService(cron.ServiceParams{
			Logger:   logg,
			Registry: cron.NewRegistry(deps.janitorJobs...),
			Lock:     deps.janitorLock,
			Metrics:  janitorMetrics,
			Interval: cfg.Janitor.Interval,
		})
		if err != nil {
			logg.Error(ctx, "failed to create janitor", err)
			os.Exit(1)
		}
		go func() {
			if err := janitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "janitor stopped unexpectedly", err)
			}
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"storage_driver": cfg.Storage.Driver,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			deps.store,
			deps.readiness,
			session.NewWatcher(provider, logg),
			provider,
			checkoutService,
			deps.counters,
			deps.counterKey,
			registry,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting storefront gateway")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "storefront gateway stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down storefront gateway")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
