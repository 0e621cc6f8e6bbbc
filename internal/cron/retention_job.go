package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/metrics"
)

const StateRetentionJobName = "client-state-retention"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stateRetentionRepo interface {
	DeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type StateRetentionJobParams struct {
	Logger     *logger.Logger
	Metrics    *metrics.JanitorMetrics
	DB         txRunner
	Repository stateRetentionRepo
	Grace      time.Duration
}

// NewStateRetentionJob removes client_storage rows whose TTL passed more
// than Grace ago.
func NewStateRetentionJob(params StateRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("state repository required")
	}
	grace := params.Grace
	if grace < 0 {
		grace = 0
	}
	return &stateRetentionJob{
		logg:    params.Logger,
		metrics: params.Metrics,
		db:      params.DB,
		repo:    params.Repository,
		grace:   grace,
		now:     time.Now,
	}, nil
}

type stateRetentionJob struct {
	logg    *logger.Logger
	metrics *metrics.JanitorMetrics
	db      txRunner
	repo    stateRetentionRepo
	grace   time.Duration
	now     func() time.Time
}

func (j *stateRetentionJob) Name() string { return StateRetentionJobName }

func (j *stateRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteExpiredBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("client state retention: %w", err)
	}
	j.metrics.AddPurged(j.Name(), deleted)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "client state retention complete")
	return nil
}
