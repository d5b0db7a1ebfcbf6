package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/routing")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected development default env, got %q", cfg.Env)
	}
	if cfg.AsynqQueueName != "routing" {
		t.Fatalf("expected routing queue default, got %q", cfg.AsynqQueueName)
	}
	if cfg.SyncMaxAttempts != 3 || cfg.SyncBackoffBase != 2*time.Second {
		t.Fatalf("unexpected sync defaults: %d %v", cfg.SyncMaxAttempts, cfg.SyncBackoffBase)
	}
	if cfg.ReserveMaxRetries != 5 || cfg.PendingRetryAge != 30*time.Minute {
		t.Fatalf("unexpected routing defaults: %d %v", cfg.ReserveMaxRetries, cfg.PendingRetryAge)
	}
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/routing")
	t.Setenv("SYNC_MAX_ATTEMPTS", "6")
	t.Setenv("RECONCILE_BATCH_SIZE", "50")
	t.Setenv("PENDING_RETRY_AGE", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SyncMaxAttempts != 6 {
		t.Fatalf("expected override 6, got %d", cfg.SyncMaxAttempts)
	}
	if cfg.ReconcileBatchSize != 50 {
		t.Fatalf("expected override 50, got %d", cfg.ReconcileBatchSize)
	}
	if cfg.PendingRetryAge != time.Hour {
		t.Fatalf("expected override 1h, got %v", cfg.PendingRetryAge)
	}
}

func TestInvalidNumericValuesFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/routing")
	t.Setenv("SYNC_MAX_ATTEMPTS", "zero")
	t.Setenv("RESERVE_MAX_RETRIES", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SyncMaxAttempts != 3 || cfg.ReserveMaxRetries != 5 {
		t.Fatalf("expected fallbacks on invalid values, got %d %d", cfg.SyncMaxAttempts, cfg.ReserveMaxRetries)
	}
}
