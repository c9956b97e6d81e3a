package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("TINNITRACK_SERVER_ADDR", "backend:443")
	t.Setenv("TINNITRACK_REQUEST_TIMEOUT", "3s")
	t.Setenv("TINNITRACK_STORAGE", "redis")
	t.Setenv("TINNITRACK_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("TINNITRACK_EMAIL_CONFIRM_URL", "tinnitrack://auth/confirm")
	t.Setenv("TINNITRACK_VERIFY_POLL_INTERVAL", "1m")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "backend:443", cfg.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, StorageRedis, cfg.StorageBackend)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, "tinnitrack://auth/confirm", cfg.EmailConfirmRedirect)
	assert.Equal(t, "tinnitrack.db", cfg.SQLitePath)
	assert.Equal(t, time.Minute, cfg.VerificationPollInterval)
}

func TestParseEnv_EmptyValuesIgnored(t *testing.T) {
	t.Setenv("TINNITRACK_SERVER_ADDR", "")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv("TINNITRACK_REQUEST_TIMEOUT", "soon")

	cfg := &Config{}
	require.Panics(t, func() { parseEnv(cfg) })
}

func TestParseEnv_LoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TINNITRACK_SQLITE_PATH=/data/from-dotenv.db\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(func() { _ = os.Unsetenv("TINNITRACK_SQLITE_PATH") })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "/data/from-dotenv.db", cfg.SQLitePath)
}
