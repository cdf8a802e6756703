package config_test

import (
	"os"
	"testing"

	"github.com/alkime/intake/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "STATIC_DIR", "MAX_UPLOAD_BYTES", "LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.EnvDevelopment, cfg.Env)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.StaticDir)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("ENV", config.EnvProduction)
	t.Setenv("PORT", "9001")
	t.Setenv("STATIC_DIR", "/srv/static")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,172.16.0.0/12")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9001", cfg.Port)
	assert.Equal(t, "/srv/static", cfg.StaticDir)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12"}, cfg.TrustedProxies)
}

func TestLoadConfig_BadNumber(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "lots")

	_, err := config.LoadConfig()
	require.ErrorContains(t, err, "failed to process environment variables")
}

func TestBuildCSP(t *testing.T) {
	t.Parallel()

	strict := config.BuildCSP("strict")
	relaxed := config.BuildCSP("relaxed")

	assert.Contains(t, strict, "object-src 'none'")
	assert.NotContains(t, strict, "unsafe-inline'; img")
	assert.Contains(t, relaxed, "script-src 'self' 'unsafe-inline'")
	assert.Contains(t, relaxed, "media-src 'self' blob:")
}
