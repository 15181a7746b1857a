package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{Host: "localhost", User: "postgres", DBName: "comments"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("Valid config", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Short JWT secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWT.Secret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Missing database host", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Host = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("Mail enabled without host", func(t *testing.T) {
		cfg := validConfig()
		cfg.Mail.Enabled = true
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseURLs(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "u", Password: "p", DBName: "c", Port: "5432", SSLMode: "disable", TimeZone: "UTC"}

	assert.Equal(t, "postgres://u:p@db:5432/c?sslmode=disable", d.URL())
	assert.Contains(t, d.DSN(), "host=db")
	assert.Contains(t, d.DSN(), "dbname=c")
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: "9090"
database:
  host: db.internal
  user: postgres
  dbname: comments
jwt:
  secret: "0123456789abcdef0123456789abcdef"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("APP_ENV", "")
	t.Setenv("REDIS_ADDR", "cache:6379")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "9090", GlobalConfig.Server.Port)
	assert.Equal(t, "db.internal", GlobalConfig.Database.Host)
	assert.Equal(t, "cache:6379", GlobalConfig.Redis.Addr)
	assert.Equal(t, int64(24), GlobalConfig.JWT.Expire)
	assert.Equal(t, 24, GlobalConfig.Invitation.TTLHours)
	assert.Equal(t, "dev", GlobalConfig.App.Env)
}
