package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
		assert.Equal(t, "/admin/api", cfg.AdminPrefix)
		assert.Equal(t, "en", cfg.DefaultLanguage)
		assert.False(t, cfg.AllowCORS)
		assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
		assert.Equal(t, 5, cfg.LoginRateLimit)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("SERVER_PORT", ":9090")
		t.Setenv("JWT_EXPIRATION_HOURS", "-3")
		t.Setenv("ALLOW_CORS", "true")
		t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.ServerPort)
		assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
		assert.True(t, cfg.AllowCORS)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	})
}
