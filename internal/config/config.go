package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

const envPrefix = "HEARTGPT_"

type Config struct {
	Provider       string        `yaml:"provider" env:"PROVIDER"`
	Model          string        `yaml:"model" env:"MODEL"`
	BaseURL        string        `yaml:"base_url,omitempty" env:"BASE_URL"`
	MaxTokens      int           `yaml:"max_tokens" env:"MAX_TOKENS"`
	Temperature    float64       `yaml:"temperature" env:"TEMPERATURE"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`

	StagingDir string `yaml:"staging_dir,omitempty" env:"STAGING_DIR"`
	AgentsDir  string `yaml:"agents_dir,omitempty" env:"AGENTS_DIR"`
	LogPath    string `yaml:"log_path,omitempty" env:"LOG_PATH"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL"`
	WordWrap   int    `yaml:"word_wrap" env:"WORD_WRAP"`

	Search SearchConfig `yaml:"search" envPrefix:"SEARCH_"`
}

type SearchConfig struct {
	Enabled    bool   `yaml:"enabled" env:"ENABLED"`
	Endpoint   string `yaml:"endpoint,omitempty" env:"ENDPOINT"`
	MaxResults int    `yaml:"max_results" env:"MAX_RESULTS"`
}

func DefaultConfig() *Config {
	return &Config{
		Provider:       "groq",
		Model:          "llama-3.1-8b-instant",
		MaxTokens:      2048,
		Temperature:    0.7,
		RequestTimeout: 5 * time.Minute,
		LogLevel:       "info",
		WordWrap:       80,
		Search: SearchConfig{
			Enabled:    true,
			MaxResults: 5,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "heartgpt"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config file, falling back to defaults when it is missing,
// then applies HEARTGPT_* environment overrides.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.fillPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads only the file on top of the defaults. Environment
// overrides and derived paths are left out, so the result is safe to save back.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

func (c *Config) fillPaths() error {
	if c.StagingDir == "" {
		c.StagingDir = os.TempDir()
	}
	if c.AgentsDir != "" && c.LogPath != "" {
		return nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if c.AgentsDir == "" {
		c.AgentsDir = filepath.Join(dir, "agents")
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(dir, "heartgpt.log")
	}
	return nil
}

// Validate rejects values the model client would refuse anyway.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("model must be set")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Credential returns the API key from the environment, if any.
func Credential() string {
	if key := os.Getenv(envPrefix + "API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GROQ_API_KEY")
}

func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
