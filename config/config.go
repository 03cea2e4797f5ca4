// Package config loads macsim settings from $MACSIM_HOME/config.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSystemPrompt = "You are a helpful AI assistant built into a web-based macOS simulation. Keep answers concise and helpful."

	defaultAnthropicModel = "claude-sonnet-4-5"
	defaultOpenAIModel    = "gpt-4o"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the application configuration.
type Config struct {
	DataDir   string
	Storage   StorageConfig
	FS        FSConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Assistant AssistantConfig
}

type StorageConfig struct {
	Backend       string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type FSConfig struct {
	DeletePolicy    string
	PersistDebounce time.Duration
	UndoLimit       int
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type MetricsConfig struct {
	Addr string
}

type AssistantConfig struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string
	SystemPrompt string
	Timeout      time.Duration
}

// fileConfig maps to the YAML config file structure.
type fileConfig struct {
	DataDir string `yaml:"data_dir"`
	Storage struct {
		Backend       string `yaml:"backend"`
		SQLitePath    string `yaml:"sqlite_path"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       *int   `yaml:"redis_db"`
		RedisPrefix   string `yaml:"redis_prefix"`
	} `yaml:"storage"`
	FS struct {
		DeletePolicy    string `yaml:"delete_policy"`
		PersistDebounce string `yaml:"persist_debounce"`
		UndoLimit       *int   `yaml:"undo_limit"`
	} `yaml:"fs"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Assistant struct {
		Provider     string `yaml:"provider"`
		Model        string `yaml:"model"`
		APIKey       string `yaml:"api_key"`
		BaseURL      string `yaml:"base_url"`
		SystemPrompt string `yaml:"system_prompt"`
		Timeout      string `yaml:"timeout"`
	} `yaml:"assistant"`
}

// resolve returns the first non-empty value from the provided strings.
func resolve(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Home returns the macsim home directory: $MACSIM_HOME or ~/.macsim.
func Home() (string, error) {
	if dir := os.Getenv("MACSIM_HOME"); dir != "" {
		return dir, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(h, ".macsim"), nil
}

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// Load reads configuration by merging the config file, environment variables
// and defaults, in that priority. An empty path means DefaultPath. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	fc, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	home, err := Home()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir: resolve(fc.DataDir, os.Getenv("MACSIM_DATA_DIR"), home),
		Storage: StorageConfig{
			Backend:       resolve(fc.Storage.Backend, os.Getenv("MACSIM_BACKEND"), "file"),
			SQLitePath:    fc.Storage.SQLitePath,
			RedisAddr:     resolve(fc.Storage.RedisAddr, os.Getenv("MACSIM_REDIS_ADDR"), "localhost:6379"),
			RedisPassword: resolve(fc.Storage.RedisPassword, os.Getenv("MACSIM_REDIS_PASSWORD")),
			RedisPrefix:   resolve(fc.Storage.RedisPrefix, os.Getenv("MACSIM_REDIS_PREFIX"), "macsim:"),
		},
		FS: FSConfig{
			DeletePolicy: resolve(fc.FS.DeletePolicy, os.Getenv("MACSIM_DELETE_POLICY"), "detach"),
			UndoLimit:    20,
		},
		Log: LogConfig{
			Level:  resolve(fc.Log.Level, os.Getenv("MACSIM_LOG_LEVEL"), "info"),
			Format: resolve(fc.Log.Format, os.Getenv("MACSIM_LOG_FORMAT"), "json"),
			File:   resolve(fc.Log.File, os.Getenv("MACSIM_LOG_FILE")),
		},
		Metrics: MetricsConfig{
			Addr: resolve(fc.Metrics.Addr, os.Getenv("MACSIM_METRICS_ADDR")),
		},
		Assistant: AssistantConfig{
			Provider:     resolve(fc.Assistant.Provider, os.Getenv("MACSIM_ASSISTANT_PROVIDER")),
			Model:        resolve(fc.Assistant.Model, os.Getenv("MACSIM_ASSISTANT_MODEL")),
			BaseURL:      resolve(fc.Assistant.BaseURL, os.Getenv("MACSIM_ASSISTANT_BASE_URL")),
			SystemPrompt: resolve(fc.Assistant.SystemPrompt, DefaultSystemPrompt),
			Timeout:      30 * time.Second,
		},
	}

	if fc.Storage.RedisDB != nil {
		cfg.Storage.RedisDB = *fc.Storage.RedisDB
	} else if v := os.Getenv("MACSIM_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: MACSIM_REDIS_DB: %v", ErrInvalidConfig, err)
		}
		cfg.Storage.RedisDB = n
	}
	if fc.FS.UndoLimit != nil {
		cfg.FS.UndoLimit = *fc.FS.UndoLimit
	}
	debounce, err := parseDuration("fs.persist_debounce", resolve(fc.FS.PersistDebounce, os.Getenv("MACSIM_PERSIST_DEBOUNCE")))
	if err != nil {
		return nil, err
	}
	cfg.FS.PersistDebounce = debounce
	if fc.Assistant.Timeout != "" {
		d, err := parseDuration("assistant.timeout", fc.Assistant.Timeout)
		if err != nil {
			return nil, err
		}
		cfg.Assistant.Timeout = d
	}

	cfg.resolveAssistant(fc.Assistant.APIKey)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveAssistant picks the provider from the available keys when none is
// configured: Anthropic first, then OpenAI, then the offline responder.
func (c *Config) resolveAssistant(fileKey string) {
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if c.Assistant.Provider == "" {
		switch {
		case fileKey != "" || anthropicKey != "":
			c.Assistant.Provider = "anthropic"
		case openaiKey != "":
			c.Assistant.Provider = "openai"
		default:
			c.Assistant.Provider = "offline"
		}
	}
	switch c.Assistant.Provider {
	case "anthropic":
		c.Assistant.APIKey = resolve(fileKey, anthropicKey)
		c.Assistant.Model = resolve(c.Assistant.Model, defaultAnthropicModel)
	case "openai":
		c.Assistant.APIKey = resolve(fileKey, openaiKey)
		c.Assistant.Model = resolve(c.Assistant.Model, defaultOpenAIModel)
	}
}

// SetDataDir moves the data directory; paths that were derived from the old
// directory follow it.
func (c *Config) SetDataDir(dir string) {
	if dir == "" || dir == c.DataDir {
		return
	}
	if c.Storage.SQLitePath == filepath.Join(c.DataDir, "macsim.db") {
		c.Storage.SQLitePath = ""
	}
	if c.Log.File == filepath.Join(c.DataDir, "macsim.log") {
		c.Log.File = ""
	}
	c.DataDir = dir
	c.ApplyDefaults()
}

// ApplyDefaults fills paths derived from DataDir.
func (c *Config) ApplyDefaults() {
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = filepath.Join(c.DataDir, "macsim.db")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "macsim.log")
	}
}

// Validate rejects unknown backend, policy and provider names.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	switch c.FS.DeletePolicy {
	case "detach", "cascade":
	default:
		return fmt.Errorf("%w: unknown delete policy %q", ErrInvalidConfig, c.FS.DeletePolicy)
	}
	switch c.Assistant.Provider {
	case "anthropic", "openai", "offline":
	default:
		return fmt.Errorf("%w: unknown assistant provider %q", ErrInvalidConfig, c.Assistant.Provider)
	}
	if c.FS.PersistDebounce < 0 || c.FS.UndoLimit < 0 || c.Assistant.Timeout < 0 {
		return fmt.Errorf("%w: durations and limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

func parseDuration(field, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
	}
	return d, nil
}

// readConfigFile reads and parses the YAML config file.
// Returns a zero-value fileConfig if the file does not exist.
func readConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return fc, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return fc, nil
}
