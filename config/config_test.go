package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets all config-related env vars for a clean test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MACSIM_HOME",
		"MACSIM_DATA_DIR",
		"MACSIM_BACKEND",
		"MACSIM_REDIS_ADDR",
		"MACSIM_REDIS_PASSWORD",
		"MACSIM_REDIS_DB",
		"MACSIM_REDIS_PREFIX",
		"MACSIM_DELETE_POLICY",
		"MACSIM_PERSIST_DEBOUNCE",
		"MACSIM_LOG_LEVEL",
		"MACSIM_LOG_FORMAT",
		"MACSIM_LOG_FILE",
		"MACSIM_METRICS_ADDR",
		"MACSIM_ASSISTANT_PROVIDER",
		"MACSIM_ASSISTANT_MODEL",
		"MACSIM_ASSISTANT_BASE_URL",
		"ANTHROPIC_API_KEY",
		"OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("MACSIM_HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, home, cfg.DataDir)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(home, "macsim.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, "macsim:", cfg.Storage.RedisPrefix)
	assert.Equal(t, "detach", cfg.FS.DeletePolicy)
	assert.Zero(t, cfg.FS.PersistDebounce)
	assert.Equal(t, 20, cfg.FS.UndoLimit)
	assert.Equal(t, filepath.Join(home, "macsim.log"), cfg.Log.File)
	assert.Equal(t, "offline", cfg.Assistant.Provider)
	assert.Equal(t, DefaultSystemPrompt, cfg.Assistant.SystemPrompt)
	assert.Equal(t, 30*time.Second, cfg.Assistant.Timeout)
}

func TestLoadFileOverridesEnv(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("MACSIM_HOME", home)
	t.Setenv("MACSIM_BACKEND", "redis")
	t.Setenv("MACSIM_LOG_LEVEL", "warn")
	writeConfig(t, home, `
data_dir: /var/lib/macsim
storage:
  backend: sqlite
  redis_db: 3
fs:
  delete_policy: cascade
  persist_debounce: 250ms
  undo_limit: 5
assistant:
  provider: openai
  timeout: 10s
`)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/macsim", cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Storage.Backend, "file beats env")
	assert.Equal(t, 3, cfg.Storage.RedisDB)
	assert.Equal(t, "warn", cfg.Log.Level, "env fills what the file leaves out")
	assert.Equal(t, "cascade", cfg.FS.DeletePolicy)
	assert.Equal(t, 250*time.Millisecond, cfg.FS.PersistDebounce)
	assert.Equal(t, 5, cfg.FS.UndoLimit)
	assert.Equal(t, "openai", cfg.Assistant.Provider)
	assert.Equal(t, defaultOpenAIModel, cfg.Assistant.Model)
	assert.Equal(t, 10*time.Second, cfg.Assistant.Timeout)
}

func TestProviderFollowsAvailableKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("MACSIM_HOME", t.TempDir())

	t.Setenv("OPENAI_API_KEY", "sk-openai")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Assistant.Provider)
	assert.Equal(t, "sk-openai", cfg.Assistant.APIKey)

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Assistant.Provider)
	assert.Equal(t, "sk-ant", cfg.Assistant.APIKey)
	assert.Equal(t, defaultAnthropicModel, cfg.Assistant.Model)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "backend", body: "storage:\n  backend: floppy\n"},
		{name: "policy", body: "fs:\n  delete_policy: shred\n"},
		{name: "provider", body: "assistant:\n  provider: oracle\n"},
		{name: "duration", body: "fs:\n  persist_debounce: soon\n"},
		{name: "negative", body: "fs:\n  undo_limit: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			home := t.TempDir()
			t.Setenv("MACSIM_HOME", home)
			path := writeConfig(t, home, tt.body)

			_, err := Load(path)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("MACSIM_HOME", home)
	path := writeConfig(t, home, "storage: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSetDataDirMovesDerivedPaths(t *testing.T) {
	clearEnv(t)
	t.Setenv("MACSIM_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Log.File = "/tmp/custom.log"

	cfg.SetDataDir("/data")
	assert.Equal(t, filepath.Join("/data", "macsim.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, "/tmp/custom.log", cfg.Log.File, "explicit paths stay")
}
