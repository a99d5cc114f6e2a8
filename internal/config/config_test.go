package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("AGENCY_TEST_VALUE", "x")
	assert.Equal(t, "x", getEnv("AGENCY_TEST_VALUE", "d"))
	assert.Equal(t, "d", getEnv("AGENCY_TEST_MISSING", "d"))
}

func TestGetInt(t *testing.T) {
	t.Setenv("AGENCY_TEST_INT", "12")
	assert.Equal(t, 12, getInt("AGENCY_TEST_INT", 3))

	t.Setenv("AGENCY_TEST_INT", "twelve")
	assert.Equal(t, 3, getInt("AGENCY_TEST_INT", 3))
}

func TestGetDuration(t *testing.T) {
	t.Setenv("AGENCY_TEST_TTL", "90s")
	assert.Equal(t, 90*time.Second, getDuration("AGENCY_TEST_TTL", time.Minute))

	t.Setenv("AGENCY_TEST_TTL", "soon")
	assert.Equal(t, time.Minute, getDuration("AGENCY_TEST_TTL", time.Minute))
}

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_MAX_BACKUPS", "9")

	cfg := Load()
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 9, cfg.LogMaxBackups)
	assert.Equal(t, 10*time.Minute, cfg.ProjectionCacheTTL)
}
