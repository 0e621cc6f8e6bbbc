package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunkissed-southern/storefront/pkg/storage"
)

// StateRecord is one durable client-state value (a session's cart, its
// applied coupon, ...). Schema lives in pkg/migrate/migrations.
type StateRecord struct {
	Key       string     `gorm:"column:storage_key;primaryKey"`
	Payload   string     `gorm:"column:payload;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (StateRecord) TableName() string { return "client_storage" }

// StateRepository implements storage.Store on top of the client_storage table.
type StateRepository struct {
	client *Client
	ttl    time.Duration
	now    func() time.Time
}

var _ storage.Store = (*StateRepository)(nil)

func NewStateRepository(client *Client, ttl time.Duration) *StateRepository {
	return &StateRepository{client: client, ttl: ttl, now: time.Now}
}

func (r *StateRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var rec StateRecord
	err := r.client.DB().WithContext(ctx).
		Where("storage_key = ?", key).
		Where("expires_at IS NULL OR expires_at > ?", r.now().UTC()).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(rec.Payload), nil
}

func (r *StateRepository) Set(ctx context.Context, key string, value []byte) error {
	now := r.now().UTC()
	rec := StateRecord{
		Key:       key,
		Payload:   string(value),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r.ttl > 0 {
		expires := now.Add(r.ttl)
		rec.ExpiresAt = &expires
	}
	return r.client.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
	}).Create(&rec).Error
}

func (r *StateRepository) Delete(ctx context.Context, key string) error {
	return r.client.DB().WithContext(ctx).
		Where("storage_key = ?", key).
		Delete(&StateRecord{}).Error
}

func (r *StateRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// PurgeExpired removes rows whose TTL has elapsed and reports how many went.
func (r *StateRepository) PurgeExpired(ctx context.Context) (int64, error) {
	return r.DeleteExpiredBefore(ctx, r.client.DB(), r.now().UTC())
}

// DeleteExpiredBefore removes rows that expired at or before cutoff using tx.
func (r *StateRepository) DeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	if tx == nil {
		tx = r.client.DB()
	}
	res := tx.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", cutoff).
		Delete(&StateRecord{})
	return res.RowsAffected, res.Error
}
