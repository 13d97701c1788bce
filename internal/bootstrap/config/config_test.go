package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app:\n  env: test\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Env != "test" {
		t.Fatalf("app.env = %q, want test", cfg.App.Env)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("database.driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Calendar.FiscalStartMonth != 7 || cfg.Calendar.WeekStart != "saturday" {
		t.Fatalf("calendar = %+v", cfg.Calendar)
	}
	if !cfg.Numbering.FallbackOnStoreError || cfg.Numbering.MaxAttempts != 5 {
		t.Fatalf("numbering = %+v", cfg.Numbering)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Fatalf("server.request_timeout = %s, want 30s", cfg.Server.RequestTimeout)
	}
	if cfg.Report.CacheTTL != 5*time.Minute {
		t.Fatalf("report.cache_ttl = %s, want 5m", cfg.Report.CacheTTL)
	}
	if cfg.Stations.DerivedStation != "SIV" {
		t.Fatalf("stations.derived_station = %q, want SIV", cfg.Stations.DerivedStation)
	}
}

func TestLoadReadsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `database:
  driver: postgres
  dsn: "host=localhost user=qc dbname=qc"
calendar:
  fiscal_start_month: 4
  week_start: monday
numbering:
  fallback_on_store_error: false
  max_attempts: 2
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("database.driver = %q", cfg.Database.Driver)
	}
	if cfg.Calendar.FiscalStartMonth != 4 || cfg.Calendar.WeekStart != "monday" {
		t.Fatalf("calendar = %+v", cfg.Calendar)
	}
	if cfg.Numbering.FallbackOnStoreError || cfg.Numbering.MaxAttempts != 2 {
		t.Fatalf("numbering = %+v", cfg.Numbering)
	}
}

func TestLoadRejectsInvalidFiscalMonth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("calendar:\n  fiscal_start_month: 13\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
}
