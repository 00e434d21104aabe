package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "sqlite://drumfeed.db", c.DatabaseURL)
	assert.Equal(t, "secretKey", c.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, c.TokenTTL)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, "*", c.CORSOrigin)
	assert.Equal(t, 5, c.RateLimitBurst)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/drums")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("CORS_ORIGIN", "http://localhost:5173")
	t.Setenv("RATE_LIMIT_RPS", "2")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.Addr)
	assert.Equal(t, "postgres://u:p@db:5432/drums", c.DatabaseURL)
	assert.Equal(t, "from-env", c.JWTSecret)
	assert.Equal(t, time.Hour, c.TokenTTL)
	assert.Equal(t, 4, c.BcryptCost)
	assert.Equal(t, "http://localhost:5173", c.CORSOrigin)
	assert.InDelta(t, 2.0, c.RateLimitRPS, 1e-9)
	assert.Equal(t, 7, c.RateLimitBurst)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "from-env")

	c, err := LoadConfig([]string{"-a", "127.0.0.1:9090", "-d", "sqlite://x.db", "-s", "from-flag", "-t", "30m"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", c.Addr)
	assert.Equal(t, "sqlite://x.db", c.DatabaseURL)
	assert.Equal(t, "from-flag", c.JWTSecret)
	assert.Equal(t, 30*time.Minute, c.TokenTTL)
}

func TestLoadConfig_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CORS_ORIGIN=https://drums.example\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CORS_ORIGIN") })

	c, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://drums.example", c.CORSOrigin)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("TOKEN_TTL", "soon")
		_, err := LoadConfig(nil)
		require.Error(t, err)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := LoadConfig([]string{"-zzz"})
		require.Error(t, err)
	})

	t.Run("empty secret", func(t *testing.T) {
		_, err := LoadConfig([]string{"-s", ""})
		require.Error(t, err)
	})
}

func TestString_MasksSecrets(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()
	c.DatabaseURL = "postgres://drummer:hunter2@db:5432/drums"

	s := c.String()
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "secretKey")
	assert.Contains(t, s, "postgres://drummer:********@db:5432/drums")
}

func TestString_OddDatabaseURLs(t *testing.T) {
	for _, dsn := range []string{"u@h", "user:pw@host", "sqlite://drumfeed.db", "x@y://z"} {
		c := &Config{DatabaseURL: dsn}
		assert.NotPanics(t, func() { _ = c.String() }, dsn)
		assert.Contains(t, c.String(), dsn)
	}
}
