package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, 2*time.Second, cfg.Storage.OpTimeout)
	assert.Equal(t, "profilesync:", cfg.Redis.KeyPrefix)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
api:
  base_url: http://api.internal/api
storage:
  driver: sqlite
sqlite:
  path: /tmp/ps.db
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.internal/api", cfg.API.BaseURL)
	assert.Equal(t, "redis", cfg.Storage.Driver, "env overrides file")
	assert.Equal(t, "cache", cfg.Redis.Host)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, "/tmp/ps.db", cfg.SQLite.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, Database: "ps", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/ps?sslmode=disable", c.DSN())
}
