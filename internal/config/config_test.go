package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, 60, cfg.Auth.TokenExpiryMinutes)
	assert.Equal(t, time.Hour, cfg.Auth.TokenExpiry())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "http://localhost:8000", cfg.Client.BackendURL)
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxSizeBytes)
	assert.False(t, cfg.Database.IsPostgres())
	assert.Equal(t, "./stadtwache.db", cfg.Database.GetSQLitePath())
	assert.Empty(t, cfg.App.TrustedProxies)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://wache:geheim@db:5432/stadtwache?sslmode=disable")
	t.Setenv("ALLOWED_HOSTS", "https://stadtwache.de, https://admin.stadtwache.de")
	t.Setenv("BACKEND_URL", "https://api.stadtwache.de/")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.2, 10.0.0.3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.Database.IsPostgres())
	assert.Equal(t, []string{"https://stadtwache.de", "https://admin.stadtwache.de"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "https://api.stadtwache.de", cfg.Client.BackendURL)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"10.0.0.2", "10.0.0.3"}, cfg.App.TrustedProxies)
}

func TestLoad_RejectsInvalidExpiry(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_EXPIRE_MINUTES")
}
