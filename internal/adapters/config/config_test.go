package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "humesync")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "humesync")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "humesync", cfg.App.Name)
	assert.Equal(t, "https://api.hume.ai/v0", cfg.Hume.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Hume.Timeout)
	assert.Equal(t, 3, cfg.Hume.MaxCreateAttempts)
	assert.Equal(t, "ITO", cfg.Hume.DefaultVoice)
	assert.Equal(t, "en", cfg.Hume.DefaultLanguage)
	assert.Equal(t, 10*time.Minute, cfg.Workers.ReconcileInterval)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "host=localhost port=5432 user=humesync password=secret dbname=humesync sslmode=disable", cfg.Postgres.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HUME_API_KEY", "key")
	t.Setenv("HUME_TIMEOUT", "3s")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.Hume.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Hume.Timeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

// unsetEnv removes key for the duration of the test
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_MissingPostgres(t *testing.T) {
	for _, key := range []string{"POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB"} {
		unsetEnv(t, key)
	}

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadHume_NoDatabaseNeeded(t *testing.T) {
	unsetEnv(t, "POSTGRES_HOST")
	t.Setenv("HUME_API_BASE", "http://localhost:8080/v0")

	hume, _, err := LoadHume()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/v0", hume.BaseURL)
}
