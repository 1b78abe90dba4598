package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	// Empty decimals and broker lists fall back to defaults.
	for _, k := range []string{"PROJECT_START_FEE", "CASHBACK_RATE", "KAFKA_BROKERS"} {
		t.Setenv(k, "")
	}
	t.Setenv("NOTIFY_MAX_ATTEMPTS", "5")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STORAGE_BACKEND", StorageMemory)
	t.Setenv("LOCK_BACKEND", LockLocal)
	t.Setenv("NOTIFIER_BACKEND", NotifierStore)
	t.Setenv("LOCK_TIMEOUT", "250ms")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTimeout)
	assert.Equal(t, "10000", cfg.Policy.ProjectStartFee.String())
	assert.Equal(t, "0.01", cfg.Policy.CashbackRate.String())
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", StorageSQLite)
	t.Setenv("DATABASE_URL", "file:ledger.db")
	t.Setenv("LOCK_BACKEND", LockRedis)
	t.Setenv("LOCK_TIMEOUT", "2s")
	t.Setenv("NOTIFIER_BACKEND", NotifierKafka)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PROJECT_START_FEE", "2500.50")
	t.Setenv("CASHBACK_RATE", "0.02")
	t.Setenv("NOTIFY_MAX_ATTEMPTS", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.StorageBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "2500.5", cfg.Policy.ProjectStartFee.String())
	assert.Equal(t, "0.02", cfg.Policy.CashbackRate.String())
	assert.Equal(t, 3, cfg.NotifyMaxAttempts)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"STORAGE_BACKEND": "cassandra"}},
		{"sql without url", map[string]string{"STORAGE_BACKEND": StoragePostgres, "DATABASE_URL": ""}},
		{"dynamodb without tables", map[string]string{"STORAGE_BACKEND": StorageDynamoDB, "DYNAMODB_ACCOUNTS_TABLE_NAME": ""}},
		{"bad timeout", map[string]string{"LOCK_TIMEOUT": "soon"}},
		{"zero timeout", map[string]string{"LOCK_TIMEOUT": "0s"}},
		{"bad fee", map[string]string{"PROJECT_START_FEE": "ten"}},
		{"sqs without queue", map[string]string{"NOTIFIER_BACKEND": NotifierSQS, "SQS_QUEUE_URL": ""}},
		{"unknown lock", map[string]string{"LOCK_BACKEND": "zookeeper"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORAGE_BACKEND", StorageMemory)
			t.Setenv("LOCK_BACKEND", LockLocal)
			t.Setenv("NOTIFIER_BACKEND", NotifierNoOp)
			t.Setenv("LOCK_TIMEOUT", "1s")
			t.Setenv("NOTIFY_MAX_ATTEMPTS", "5")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
