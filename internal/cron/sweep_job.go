package cron

import (
	"context"
	"fmt"

	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/metrics"
)

// Purger drops entries whose TTL has elapsed and reports how many went.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// NewSweepJob wraps an in-process store that never evicts on its own.
func NewSweepJob(name string, target Purger, logg *logger.Logger, m *metrics.JanitorMetrics) (Job, error) {
	if name == "" {
		return nil, fmt.Errorf("job name required")
	}
	if target == nil {
		return nil, fmt.Errorf("sweep target required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &sweepJob{name: name, target: target, logg: logg, metrics: m}, nil
}

type sweepJob struct {
	name    string
	target  Purger
	logg    *logger.Logger
	metrics *metrics.JanitorMetrics
}

func (j *sweepJob) Name() string { return j.name }

func (j *sweepJob) Run(ctx context.Context) error {
	removed, err := j.target.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.metrics.AddPurged(j.name, removed)
	if removed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "removed", removed), "sweep complete")
	}
	return nil
}
