// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chris/funding-ledger/pkg/policy"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Lock backends.
const (
	LockLocal = "local"
	LockRedis = "redis"
)

// Notifier backends.
const (
	NotifierStore = "store"
	NotifierSQS   = "sqs"
	NotifierKafka = "kafka"
	NotifierNoOp  = "noop"
)

// Tables names the DynamoDB tables.
type Tables struct {
	Accounts      string
	Transactions  string
	Idempotency   string
	Notifications string
	Projects      string
}

// Config is the full process configuration.
type Config struct {
	HTTPPort string

	StorageBackend string
	DatabaseURL    string
	Tables         Tables

	LockBackend string
	RedisAddr   string
	LockTimeout time.Duration

	NotifierBackend   string
	SQSQueueURL       string
	KafkaBrokers      []string
	KafkaTopic        string
	NotifyMaxAttempts int

	Policy policy.Config
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without reading .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		StorageBackend: getEnv("STORAGE_BACKEND", StorageMemory),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		Tables: Tables{
			Accounts:      getEnv("DYNAMODB_ACCOUNTS_TABLE_NAME", ""),
			Transactions:  getEnv("DYNAMODB_TRANSACTIONS_TABLE_NAME", ""),
			Idempotency:   getEnv("DYNAMODB_IDEMPOTENCY_TABLE_NAME", ""),
			Notifications: getEnv("DYNAMODB_NOTIFICATIONS_TABLE_NAME", ""),
			Projects:      getEnv("DYNAMODB_PROJECTS_TABLE_NAME", ""),
		},
		LockBackend:     getEnv("LOCK_BACKEND", LockLocal),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		NotifierBackend: getEnv("NOTIFIER_BACKEND", NotifierStore),
		SQSQueueURL:     getEnv("SQS_QUEUE_URL", ""),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "funding-notifications"),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.LockTimeout, err = time.ParseDuration(getEnv("LOCK_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid LOCK_TIMEOUT: %w", err)
	}
	if cfg.NotifyMaxAttempts, err = strconv.Atoi(getEnv("NOTIFY_MAX_ATTEMPTS", "5")); err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_MAX_ATTEMPTS: %w", err)
	}

	cfg.Policy = policy.DefaultConfig()
	if cfg.Policy.ProjectStartFee, err = getDecimal("PROJECT_START_FEE", cfg.Policy.ProjectStartFee); err != nil {
		return nil, err
	}
	if cfg.Policy.CashbackRate, err = getDecimal("CASHBACK_RATE", cfg.Policy.CashbackRate); err != nil {
		return nil, err
	}
	if cfg.Policy.ReferralBonus, err = getDecimal("REFERRAL_BONUS", cfg.Policy.ReferralBonus); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory:
	case StorageDynamoDB:
		t := c.Tables
		if t.Accounts == "" || t.Transactions == "" || t.Idempotency == "" || t.Notifications == "" || t.Projects == "" {
			return fmt.Errorf("one or more DynamoDB table name environment variables are not set")
		}
	case StorageSQLite, StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", c.StorageBackend)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.LockBackend {
	case LockLocal, LockRedis:
	default:
		return fmt.Errorf("unknown LOCK_BACKEND %q", c.LockBackend)
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("LOCK_TIMEOUT must be positive, got %s", c.LockTimeout)
	}

	switch c.NotifierBackend {
	case NotifierStore, NotifierNoOp:
	case NotifierSQS:
		if c.SQSQueueURL == "" {
			return fmt.Errorf("SQS_QUEUE_URL is required for the sqs notifier")
		}
	case NotifierKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the kafka notifier")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER_BACKEND %q", c.NotifierBackend)
	}
	if c.NotifyMaxAttempts < 1 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be at least 1, got %d", c.NotifyMaxAttempts)
	}
	return nil
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
