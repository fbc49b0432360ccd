package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "PORT", "APP_ENV", "LOG_LEVEL",
		"IMAGE_MODEL", "TEXT_MODEL", "SESSION_MAX", "SESSION_TTL", "UPLOAD_MAX_MEMORY", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Port)
	assert.True(t, cfg.IsLocal())
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.Models.Image)
	assert.Equal(t, "gemini-2.5-flash", cfg.Models.Text)
	assert.Equal(t, 1024, cfg.Session.Max)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, int64(32<<20), cfg.UploadMaxMemory)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadCORSOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, ,https://studio.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:5173", "https://studio.example.com"}, cfg.CORSOrigins)
}

func TestLoadMissingKey(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadKeyFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "google", cfg.APIKey)

	t.Setenv("GEMINI_API_KEY", "gemini")
	cfg, _ = Load()
	assert.Equal(t, "gemini", cfg.APIKey)

	t.Setenv("API_KEY", "primary")
	cfg, _ = Load()
	assert.Equal(t, "primary", cfg.APIKey)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("SESSION_MAX", "nope")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Port)
	assert.False(t, cfg.IsLocal())
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 1024, cfg.Session.Max)
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, ":80", NormalizePort("80"))
	assert.Equal(t, "127.0.0.1:80", NormalizePort("127.0.0.1:80"))
	assert.Equal(t, ":80", NormalizePort(":80"))
}
