package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "ENV", "STORAGE_BACKEND", "DATABASE_URL", "SQLITE_PATH",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX", "BADGER_PATH",
	"LOG_LEVEL", "SHUTDOWN_TIMEOUT", "BADGER_GC_INTERVAL",
}

// clearEnv blanks every key Load reads; getEnv treats "" as unset.
func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.True(t, cfg.Development())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.Development())
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "taskeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
storage_backend: badger
badger_path: /var/lib/taskeeper
log_level: debug
shutdown_timeout: 30s
badger_gc_interval: 1m
redis:
  prefix: "staging:"
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, BackendBadger, cfg.StorageBackend)
	assert.Equal(t, "/var/lib/taskeeper", cfg.BadgerPath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Minute, cfg.BadgerGCInterval)
	assert.Equal(t, "staging:", cfg.Redis.Prefix)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr, "unset file keys keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"STORAGE_BACKEND": "mongo"}},
		{name: "bad redis db", env: map[string]string{"REDIS_DB": "zero"}},
		{name: "bad timeout", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{name: "missing file", env: map[string]string{"CONFIG_FILE": "/does/not/exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	for _, b := range Backends {
		cfg.StorageBackend = b
		assert.NoError(t, cfg.Validate(), b)
	}

	cfg = Default()
	cfg.StorageBackend = BackendPostgres
	cfg.DatabaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ShutdownTimeout = 0
	assert.Error(t, cfg.Validate())
}
