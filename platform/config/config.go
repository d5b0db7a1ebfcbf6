// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// SchedulerConfig provides settings for the asynq-backed job transport.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// CRMConfig provides settings for the external CRM client.
type CRMConfig interface {
	GetCRMBaseURL() string
	GetCRMAPIKey() string
	GetCRMTimeout() time.Duration
	GetCRMRequestsPerSecond() float64
	GetCRMBurst() int
}

// RoutingConfig provides tuning knobs for the assignment coordinator
// and the bulk reconciliation job.
type RoutingConfig interface {
	GetSyncMaxAttempts() int
	GetSyncBackoffBase() time.Duration
	GetReserveMaxRetries() int
	GetReconcileBatchSize() int
	GetPendingRetryAge() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	DatabaseURL          string
	MigrationsDir        string
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	CRMBaseURL           string
	CRMAPIKey            string
	CRMTimeout           time.Duration
	CRMRequestsPerSecond float64
	CRMBurst             int
	SyncMaxAttempts      int
	SyncBackoffBase      time.Duration
	ReserveMaxRetries    int
	ReconcileInterval    time.Duration
	ReconcileBatchSize   int
	PendingRetryAge      time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// CRMConfig implementation
func (c *Config) GetCRMBaseURL() string            { return c.CRMBaseURL }
func (c *Config) GetCRMAPIKey() string             { return c.CRMAPIKey }
func (c *Config) GetCRMTimeout() time.Duration     { return c.CRMTimeout }
func (c *Config) GetCRMRequestsPerSecond() float64 { return c.CRMRequestsPerSecond }
func (c *Config) GetCRMBurst() int                 { return c.CRMBurst }

// RoutingConfig implementation
func (c *Config) GetSyncMaxAttempts() int           { return c.SyncMaxAttempts }
func (c *Config) GetSyncBackoffBase() time.Duration { return c.SyncBackoffBase }
func (c *Config) GetReserveMaxRetries() int         { return c.ReserveMaxRetries }
func (c *Config) GetReconcileBatchSize() int        { return c.ReconcileBatchSize }
func (c *Config) GetPendingRetryAge() time.Duration { return c.PendingRetryAge }

// Load reads configuration from the environment. A .env file is loaded first
// when present so local development does not need exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		MigrationsDir:        getEnv("MIGRATIONS_DIR", "migrations"),
		RedisURL:             os.Getenv("REDIS_URL"),
		RedisTLSInsecure:     getBoolEnv("REDIS_TLS_INSECURE", false),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "routing"),
		AsynqConcurrency:     getIntEnv("ASYNQ_CONCURRENCY", 10),
		CRMBaseURL:           os.Getenv("CRM_BASE_URL"),
		CRMAPIKey:            os.Getenv("CRM_API_KEY"),
		CRMTimeout:           getDurationEnv("CRM_TIMEOUT", 10*time.Second),
		CRMRequestsPerSecond: getFloatEnv("CRM_REQUESTS_PER_SECOND", 5),
		CRMBurst:             getIntEnv("CRM_BURST", 5),
		SyncMaxAttempts:      getIntEnv("SYNC_MAX_ATTEMPTS", 3),
		SyncBackoffBase:      getDurationEnv("SYNC_BACKOFF_BASE", 2*time.Second),
		ReserveMaxRetries:    getIntEnv("RESERVE_MAX_RETRIES", 5),
		ReconcileInterval:    getDurationEnv("RECONCILE_INTERVAL", 15*time.Minute),
		ReconcileBatchSize:   getIntEnv("RECONCILE_BATCH_SIZE", 200),
		PendingRetryAge:      getDurationEnv("PENDING_RETRY_AGE", 30*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getFloatEnv(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getBoolEnv(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
