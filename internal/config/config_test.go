package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Cache.ProposalTTL)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	})

	t.Run("yaml file overlays defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
environment: production
log_level: warn
server:
  port: 9090
cache:
  proposal_ttl: 30m
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Production, cfg.Environment)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 30*time.Minute, cfg.Cache.ProposalTTL)
		// Untouched values keep their defaults.
		assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	})

	t.Run("environment beats file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

		t.Setenv("SERVER_PORT", "7070")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("CACHE_PROPOSAL_TTL", "15m")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "sk-test", cfg.LLM.APIKey)
		assert.Equal(t, 15*time.Minute, cfg.Cache.ProposalTTL)
	})

	t.Run("malformed yaml is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("environment: sandbox\n"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
