package testsupport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadPostgresConfigFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "user")
	t.Setenv("POSTGRES_PASSWORD", "pass")
	t.Setenv("POSTGRES_DB", "db")
	t.Setenv("POSTGRES_PORT", "5543")

	cfg := LoadPostgresConfigFromEnv(t)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5543, cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
}

func TestLoadRedisConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadRedisConfigFromEnv(t)

	assert.Equal(t, "redis:6380", cfg.Addr())
	assert.Equal(t, 2, cfg.DB)
}

func TestIntValueFallsBack(t *testing.T) {
	t.Setenv("SOME_PORT", "not-a-number")
	assert.Equal(t, 42, intValue("SOME_PORT", 42))
}
