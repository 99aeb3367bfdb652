package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("CACHE_TTL_SHORT", "60")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("INGEST_CITIES", "Mumbai,New Delhi")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 60, cfg.Cache.ShortTTL)
	assert.Equal(t, 1800, cfg.Cache.MediumTTL)
	assert.Equal(t, 10*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, "7d", cfg.Auth.JWTExpiresIn)
	assert.Equal(t, []string{"http://localhost:3000", "https://a.example", "https://b.example"}, cfg.Origins())
	assert.Equal(t, []string{"Mumbai", "New Delhi"}, cfg.IngestCities())
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.URL = "postgres://localhost/climatrix"

	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.Auth.JWTSecret = "short"
	require.NoError(t, cfg.Validate())

	cfg.Server.Environment = "production"
	assert.ErrorContains(t, cfg.Validate(), "32 characters")

	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "oracle"
	assert.ErrorContains(t, cfg.Validate(), "unsupported database driver")
}
