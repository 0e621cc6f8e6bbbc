package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/sunkissed-southern/storefront/api/controllers"
	"github.com/sunkissed-southern/storefront/api/middleware"
	"github.com/sunkissed-southern/storefront/internal/checkout"
	"github.com/sunkissed-southern/storefront/internal/cron"
	"github.com/sunkissed-southern/storefront/internal/sales"
	"github.com/sunkissed-southern/storefront/pkg/config"
	"github.com/sunkissed-southern/storefront/pkg/db"
	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/metrics"
	"github.com/sunkissed-southern/storefront/pkg/migrate"
	"github.com/sunkissed-southern/storefront/pkg/redis"
	"github.com/sunkissed-southern/storefront/pkg/storage"
)

const janitorLockName = "janitor"

// infra is everything that depends on the selected storage driver.
type infra struct {
	store      storage.Store
	readiness  map[string]controllers.Pinger
	salesCache sales.Cache
	guard      checkout.InFlightGuard
	counters   middleware.CounterStore
	counterKey func(parts ...string) string

	janitorLock cron.Lock
	janitorJobs []cron.Job
	closers     []func() error
}

// Close releases every connection opened by newInfra.
func (i *infra) Close() error {
	var err error
	for idx := len(i.closers) - 1; idx >= 0; idx-- {
		err = multierr.Append(err, i.closers[idx]())
	}
	return err
}

func newInfra(ctx context.Context, cfg *config.Config, logg *logger.Logger, janitorMetrics *metrics.JanitorMetrics) (*infra, error) {
	deps := &infra{readiness: map[string]controllers.Pinger{}}

	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		deps.closers = append(deps.closers, client.Close)
		deps.store = redis.NewStateStore(client, cfg.Storage.TTL)
		deps.readiness["redis"] = client
		deps.salesCache = redis.NewSalesCache(client)
		deps.guard = redis.NewCheckoutGuard(client)
		deps.counters = client
		deps.counterKey = client.RateLimitKey
		lock, err := cron.NewRedisLock(client, client.LockKey(janitorLockName), 0)
		if err != nil {
			return nil, multierr.Append(err, deps.Close())
		}
		deps.janitorLock = lock
		return deps, nil

	case config.StorageDriverSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		deps.closers = append(deps.closers, client.Close)
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(err, deps.Close())
		}
		repo := db.NewStateRepository(client, cfg.Storage.TTL)
		deps.store = repo
		deps.readiness["database"] = repo
		retention, err := cron.NewStateRetentionJob(cron.StateRetentionJobParams{
			Logger:     logg,
			Metrics:    janitorMetrics,
			DB:         client,
			Repository: repo,
			Grace:      cfg.Janitor.StateGrace,
		})
		if err != nil {
			return nil, multierr.Append(err, deps.Close())
		}
		deps.janitorJobs = append(deps.janitorJobs, retention)

	case config.StorageDriverMemory:
		mem := storage.NewMemory()
		deps.store = mem
		deps.readiness["storage"] = mem

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	// Without Redis the process is the only replica; throttling windows,
	// the sales cache and in-flight guards live in memory and need sweeping.
	counters := middleware.NewMemoryCounter()
	cache := sales.NewMemoryCache()
	guard := checkout.NewMemoryGuard()
	deps.counters = counters
	deps.salesCache = cache
	deps.guard = guard
	deps.janitorLock = &cron.LocalLock{}

	for name, target := range map[string]cron.Purger{
		"rate-limit-sweep":     counters,
		"sales-cache-sweep":    cache,
		"checkout-guard-sweep": guard,
	} {
		job, err := cron.NewSweepJob(name, target, logg, janitorMetrics)
		if err != nil {
			return nil, multierr.Append(err, deps.Close())
		}
		deps.janitorJobs = append(deps.janitorJobs, job)
	}
	return deps, nil
}
