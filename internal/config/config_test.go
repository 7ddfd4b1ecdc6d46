package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "/api/automation", cfg.Server.BasePath)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "task_automation", cfg.Database.Name)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0 8 * * *", cfg.Scheduler.DueDateCron)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: "9090"
  mode: release
database:
  host: db.internal
scheduler:
  enabled: false
  due_date_cron: "0 6 * * *"
logger:
  level: warn
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0 6 * * *", cfg.Scheduler.DueDateCron)
	assert.Equal(t, "warn", cfg.Logger.Level)

	// Untouched sections keep their defaults
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  host: from-file\n"), 0o644))

	t.Setenv("DB_HOST", "from-env")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("JWT_SECRET", "token-secret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "token-secret", cfg.JWT.Secret)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "app",
		Password: "pw",
		Name:     "tasks",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=tasks sslmode=disable", cfg.GetDSN())
}
