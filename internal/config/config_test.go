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
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9876", cfg.App.Addr)
	assert.Equal(t, "/visao-geral", cfg.App.BasePath)
	assert.Equal(t, "/api/visao-geral", cfg.Upstream.Path)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 0, cfg.Upstream.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Page.SessionTTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  addr: ":8080"
upstream:
  base_url: "https://escola.example.com"
  only_certified: true
cache:
  enabled: true
  ttl: 1m
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("APP_APP_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.App.Addr)
	assert.Equal(t, "https://escola.example.com", cfg.Upstream.BaseURL)
	assert.True(t, cfg.Upstream.OnlyCertified)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: loud\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: invalid")
}

func TestValidateRequiresSentryDSN(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Sentry.Enabled = true
	assert.Error(t, Validate(cfg))
}
