package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qctrack/internal/errs"
	"qctrack/internal/infrastructure/persistence/gormstore/model"
	"qctrack/internal/ports"
)

// ReportCache stores rendered reports in the report_cache table. Expired
// entries read as misses and are removed lazily on the next Get.
type ReportCache struct {
	db  *gorm.DB
	now func() time.Time
}

var _ ports.Cache = (*ReportCache)(nil)

func NewReportCache(db *gorm.DB) *ReportCache {
	return &ReportCache{db: db, now: time.Now}
}

func (c *ReportCache) Get(ctx context.Context, key string) (string, bool, error) {
	trimmedKey, err := checkKey(ctx, key)
	if err != nil {
		return "", false, err
	}

	var row model.ReportCacheEntry
	if err := c.db.WithContext(ctx).Where("key = ?", trimmedKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query cache by key")
	}

	if row.ExpiresAt != nil && !c.now().UTC().Before(*row.ExpiresAt) {
		if err := c.db.WithContext(ctx).Where("key = ?", trimmedKey).Delete(&model.ReportCacheEntry{}).Error; err != nil {
			return "", false, errs.Wrap(err, "evict expired cache key")
		}
		return "", false, nil
	}
	return row.Value, true, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	trimmedKey, err := checkKey(ctx, key)
	if err != nil {
		return err
	}

	now := c.now().UTC()
	row := model.ReportCacheEntry{
		Key:       trimmedKey,
		Value:     value,
		UpdatedAt: now,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		row.ExpiresAt = &expiresAt
	}

	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"expires_at": row.ExpiresAt,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert cache key")
	}
	return nil
}

func (c *ReportCache) Delete(ctx context.Context, key string) error {
	trimmedKey, err := checkKey(ctx, key)
	if err != nil {
		return err
	}

	if err := c.db.WithContext(ctx).Where("key = ?", trimmedKey).Delete(&model.ReportCacheEntry{}).Error; err != nil {
		return errs.Wrap(err, "delete cache key")
	}
	return nil
}

func checkKey(ctx context.Context, key string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return "", errors.New("key is required")
	}
	return trimmedKey, nil
}
