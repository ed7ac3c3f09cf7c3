package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Default Values", func(t *testing.T) {
		cfg, err := LoadConfig()
		assert.NoError(t, err)
		assert.Equal(t, "local", cfg.AppEnv)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "sqlite", cfg.SessionBackend)
		assert.Equal(t, time.Hour, cfg.SessionTTL)
		assert.Equal(t, 10, cfg.RateLimitBurst)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("Environment Variables", func(t *testing.T) {
		t.Setenv("PORT", "9999")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("APP_ENV", "production")

		cfg, err := LoadConfig()
		assert.NoError(t, err)
		assert.Equal(t, "9999", cfg.Port)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("Allowed Origins", func(t *testing.T) {
		cfg := Config{CORSAllowedOrigins: "http://a.test, http://b.test,,"}
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
	})
}
