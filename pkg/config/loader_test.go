package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-repo/voice-banking/internal/domain"
)

func TestLoadFile_DefaultsAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 9090
gemini:
  model: gemini-test
dialogue:
  session_ttl: 5m
cors:
  allowed_origins: ["https://bank.example"]
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "gemini-test", cfg.Gemini.Model)
	assert.Equal(t, 5*time.Minute, cfg.Dialogue.SessionTTL)
	assert.Equal(t, []string{"https://bank.example"}, cfg.CORS.AllowedOrigins)

	// Defaults
	assert.Equal(t, "us-central1", cfg.Gemini.Location)
	assert.Equal(t, 60*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, uint32(5), cfg.CircuitBreaker.FailureThreshold)
	assert.Equal(t, "/metrics", cfg.Prometheus.Path)
}

func TestLoadFile_EnvironmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: 9090\n"), 0o644))

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("APP_REDIS_PREFIX", "test:")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, "/srv/data", cfg.Data.Dir)
	assert.Equal(t, "test:", cfg.Redis.Prefix)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unclosed"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestResolveDataDir_Explicit(t *testing.T) {
	dir := t.TempDir()

	got, err := ResolveDataDir(DataConfig{Dir: dir, Base: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestResolveDataDir_StaleOverrideFallsThrough(t *testing.T) {
	base := t.TempDir()
	stale := filepath.Join(base, "stale")

	_, err := ResolveDataDir(DataConfig{Dir: stale, Base: base})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), stale)
	assert.Contains(t, err.Error(), filepath.Join(base, "data", "synthetic_data"))

	preferred := filepath.Join(base, "data", "synthetic_data")
	require.NoError(t, os.MkdirAll(preferred, 0o755))
	got, err := ResolveDataDir(DataConfig{Dir: stale, Base: base})
	require.NoError(t, err)
	assert.Equal(t, preferred, got)
}

func TestResolveDataDir_SearchOrder(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "app")
	require.NoError(t, os.MkdirAll(base, 0o755))

	_, err := ResolveDataDir(DataConfig{Base: base})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), filepath.Join(base, "data", "synthetic_data"))

	sibling := filepath.Join(root, "synthetic_data")
	require.NoError(t, os.MkdirAll(sibling, 0o755))
	got, err := ResolveDataDir(DataConfig{Base: base})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "..", "synthetic_data"), got)

	local := filepath.Join(base, "synthetic_data")
	require.NoError(t, os.MkdirAll(local, 0o755))
	got, err = ResolveDataDir(DataConfig{Base: base})
	require.NoError(t, err)
	assert.Equal(t, local, got)

	preferred := filepath.Join(base, "data", "synthetic_data")
	require.NoError(t, os.MkdirAll(preferred, 0o755))
	got, err = ResolveDataDir(DataConfig{Base: base})
	require.NoError(t, err)
	assert.Equal(t, preferred, got)
}
