package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	for _, k := range []string{"PORT", "DB_HOST", "DB_PORT", "DB_NAME", "REDIS_ADDR", "SESSION_TTL_SECONDS", "SWEEP_INTERVAL", "LOG_LEVEL", "OTEL_ENABLED", "BOOTSTRAP_ADMIN_EMAIL", "REPORT_TZ"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "inventario", cfg.Database.Name)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Duration(0), cfg.SweepInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "UTC", cfg.ReportTZ)
	assert.False(t, cfg.OtelEnabled)
	assert.Empty(t, cfg.Bootstrap.Email)
	assert.Equal(t, "ADMIN001", cfg.Bootstrap.Carnet)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SESSION_TTL_SECONDS", "600")
	t.Setenv("SWEEP_INTERVAL", "15m")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "not-a-number")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTEL_SAMPLER_RATIO", "3.5")

	cfg := Load()

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 5, cfg.LoginPerMin)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, 1.0, cfg.OtelSampleRatio)
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal port=6543")
}

func TestLoadEnv_FileDoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("INV_TEST_A=from-file\nINV_TEST_B=from-file\n"), 0o600))

	t.Setenv("INV_TEST_A", "from-env")
	t.Setenv("INV_TEST_B", "")
	os.Unsetenv("INV_TEST_B")

	LoadEnv(path)

	assert.Equal(t, "from-env", os.Getenv("INV_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("INV_TEST_B"))
	os.Unsetenv("INV_TEST_B")
}
