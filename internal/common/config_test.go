package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, LLMProviderGemini, cfg.LLM.DefaultProvider)
	assert.Equal(t, 10, cfg.Pipeline.PreviewRows)
	assert.False(t, cfg.Pipeline.AllowSchemaDrift)
}

func TestLoadFromFiles_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "insight.toml")
	content := `
environment = "production"

[server]
port = 9090

[storage]
type = "badger"

[pipeline]
stage_timeout = "30s"
allow_schema_drift = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Storage.Type)
	assert.True(t, cfg.Pipeline.AllowSchemaDrift)
	assert.Equal(t, 30*time.Second, cfg.StageTimeout())

	// Untouched values keep their defaults
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.toml")
	second := filepath.Join(dir, "second.toml")
	require.NoError(t, os.WriteFile(first, []byte("[server]\nport = 9000\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("[server]\nport = 9001\n"), 0644))

	cfg, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/insight.toml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INSIGHT_SERVER_PORT", "7070")
	t.Setenv("INSIGHT_STORAGE_TYPE", "badger")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("INSIGHT_LLM_PROVIDER", "claude")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Storage.Type)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, LLMProviderClaude, cfg.LLM.DefaultProvider)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 6060, "0.0.0.0")
	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Zero values leave the config untouched
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestDurationFallbacks(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Pipeline.StageTimeout = "not a duration"
	cfg.Pipeline.JobTTL = ""

	assert.Equal(t, 2*time.Minute, cfg.StageTimeout())
	assert.Equal(t, 24*time.Hour, cfg.JobTTL())
}
