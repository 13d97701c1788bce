package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"qctrack/internal/infrastructure/persistence/gormstore/model"
)

func setupReportCache(t *testing.T) *ReportCache {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "cache.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.ReportCacheEntry{}); err != nil {
		t.Fatalf("auto migrate report_cache: %v", err)
	}

	return NewReportCache(db)
}

func TestReportCacheSetGetDelete(t *testing.T) {
	cache := setupReportCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "lar:OQA:26:01:52", `{"rows":[]}`, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := cache.Get(ctx, "lar:OQA:26:01:52")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != `{"rows":[]}` {
		t.Fatalf("Get() = %q, found=%v", value, found)
	}

	if err := cache.Set(ctx, "lar:OQA:26:01:52", `{"rows":[1]}`, 0); err != nil {
		t.Fatalf("Set(update) error = %v", err)
	}
	value, found, err = cache.Get(ctx, "lar:OQA:26:01:52")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != `{"rows":[1]}` {
		t.Fatalf("Get() after update = %q, found=%v", value, found)
	}

	if err := cache.Delete(ctx, "lar:OQA:26:01:52"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, found, err = cache.Get(ctx, "lar:OQA:26:01:52")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if found {
		t.Fatalf("Get() after delete expected found=false")
	}
}

func TestReportCacheExpiry(t *testing.T) {
	cache := setupReportCache(t)
	ctx := context.Background()
	now := time.Date(2025, 8, 10, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if err := cache.Set(ctx, "trend:OQA", "payload", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, found, err := cache.Get(ctx, "trend:OQA"); err != nil || !found {
		t.Fatalf("Get() before expiry found=%v err=%v", found, err)
	}

	now = now.Add(time.Minute)
	if _, found, err := cache.Get(ctx, "trend:OQA"); err != nil || found {
		t.Fatalf("Get() after expiry found=%v err=%v", found, err)
	}
}

func TestReportCacheRejectsBlankKey(t *testing.T) {
	cache := setupReportCache(t)
	if err := cache.Set(context.Background(), "  ", "v", 0); err == nil {
		t.Fatalf("Set(blank key) expected error")
	}
}
