package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds settings for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the configured HTTP timeout.
func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// APIKey reads the API key from the configured environment variable.
func (c OpenAIConfig) APIKey() (string, error) {
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("missing API key in env %s", c.APIKeyEnv)
	}
	return key, nil
}

// FileGeneratorConfig points the file generator at a JSON catalog.
type FileGeneratorConfig struct {
	Path string `yaml:"path"`
}

// GeneratorConfig selects and configures the catalog text generator.
type GeneratorConfig struct {
	Type       string               `yaml:"type"`
	MinApps    int                  `yaml:"min_apps"`
	MinActions int                  `yaml:"min_actions"`
	OpenAI     *OpenAIConfig        `yaml:"openai,omitempty"`
	File       *FileGeneratorConfig `yaml:"file,omitempty"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string        `yaml:"type"`
	Dimension int           `yaml:"dimension"`
	OpenAI    *OpenAIConfig `yaml:"openai,omitempty"`
}

// StoreConfig selects and configures the relational store.
type StoreConfig struct {
	Type         string `yaml:"type"`
	DSNEnv       string `yaml:"dsn_env"`
	DSN          string `yaml:"dsn"`
	EnsureSchema bool   `yaml:"ensure_schema"`
}

// ResolveDSN returns the connection string, preferring the environment.
func (c StoreConfig) ResolveDSN() string {
	if c.DSNEnv != "" {
		if v := strings.TrimSpace(os.Getenv(c.DSNEnv)); v != "" {
			return v
		}
	}
	return c.DSN
}

// SeederConfig bounds the per-record jitter.
type SeederConfig struct {
	MinDelayMs int `yaml:"min_delay_ms"`
	MaxDelayMs int `yaml:"max_delay_ms"`
}

// MinDelay returns the lower jitter bound.
func (c SeederConfig) MinDelay() time.Duration { return time.Duration(c.MinDelayMs) * time.Millisecond }

// MaxDelay returns the (exclusive) upper jitter bound.
func (c SeederConfig) MaxDelay() time.Duration { return time.Duration(c.MaxDelayMs) * time.Millisecond }

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Generator GeneratorConfig `yaml:"generator"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Store     StoreConfig     `yaml:"store"`
	Seeder    SeederConfig    `yaml:"seeder"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML config data and applies defaults.
func Parse(data []byte) (*AppConfig, error) {
	// ensure_schema defaults to true unless the file says otherwise
	cfg := AppConfig{Store: StoreConfig{EnsureSchema: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/appsearch/config.yaml.
// If neither exists, it writes defaults to ~/.config/appsearch/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects combinations the components cannot run with.
func (c *AppConfig) Validate() error {
	switch c.Generator.Type {
	case "openai", "file":
	default:
		return fmt.Errorf("unknown generator: %s", c.Generator.Type)
	}
	switch c.Embedder.Type {
	case "openai", "hashing":
	default:
		return fmt.Errorf("unknown embedder: %s", c.Embedder.Type)
	}
	switch c.Store.Type {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown store: %s", c.Store.Type)
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("embedder dimension must be positive, got %d", c.Embedder.Dimension)
	}
	if c.Seeder.MaxDelayMs < c.Seeder.MinDelayMs {
		return fmt.Errorf("seeder max_delay_ms (%d) is below min_delay_ms (%d)", c.Seeder.MaxDelayMs, c.Seeder.MinDelayMs)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "appsearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Generator: GeneratorConfig{Type: "openai"},
		Embedder:  EmbedderConfig{Type: "openai"},
		Store:     StoreConfig{Type: "postgres", EnsureSchema: true},
		Seeder:    SeederConfig{MinDelayMs: 300, MaxDelayMs: 1000},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "openai"
	}
	if cfg.Generator.MinApps < 3 {
		cfg.Generator.MinApps = 3
	}
	if cfg.Generator.MinActions < 3 {
		cfg.Generator.MinActions = 3
	}
	switch cfg.Generator.Type {
	case "openai":
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Generator.OpenAI, "gpt-4o-2024-08-06", 60)
	case "file":
		if cfg.Generator.File == nil {
			cfg.Generator.File = &FileGeneratorConfig{}
		}
		if cfg.Generator.File.Path == "" {
			cfg.Generator.File.Path = "catalog.json"
		}
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	switch cfg.Embedder.Type {
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Embedder.OpenAI, "text-embedding-3-small", 30)
		if cfg.Embedder.Dimension == 0 {
			cfg.Embedder.Dimension = 1536
		}
	case "hashing":
		if cfg.Embedder.Dimension == 0 {
			cfg.Embedder.Dimension = 256
		}
	}

	if cfg.Store.Type == "" {
		cfg.Store.Type = "postgres"
	}
	if cfg.Store.DSNEnv == "" {
		cfg.Store.DSNEnv = "DATABASE_URL"
	}

	if cfg.Seeder.MinDelayMs == 0 && cfg.Seeder.MaxDelayMs == 0 {
		cfg.Seeder.MinDelayMs = 300
		cfg.Seeder.MaxDelayMs = 1000
	}
}

func applyOpenAIDefaults(c *OpenAIConfig, model string, timeoutSecs int) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = timeoutSecs
	}
}
