// Package config loads runtime settings from defaults, an optional YAML
// file, the environment and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey means neither GEMINI_API_KEY nor GOOGLE_API_KEY is set
var ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY or GOOGLE_API_KEY")

// Config holds the assistant settings
type Config struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"`

	// Rate-limit retries
	MaxAttempts int           `yaml:"max_attempts"`
	BackoffUnit time.Duration `yaml:"backoff_unit"`

	// Recent entries handed to the model as context
	ContextSize int `yaml:"context_size"`

	Addr  string `yaml:"addr"`
	Debug bool   `yaml:"debug"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Model:       "gemini-2.0-flash-lite",
		MaxAttempts: 3,
		BackoffUnit: 5 * time.Second,
		ContextSize: 10,
		Addr:        ":8080",
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// values already in the environment win over .env
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.APIKey = os.Getenv("GEMINI_API_KEY")
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GOOGLE_API_KEY")
	}

	if v := os.Getenv("JOURNAL_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("JOURNAL_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("JOURNAL_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse JOURNAL_DEBUG: %w", err)
		}
		c.Debug = b
	}
	return nil
}

// Validate checks that the assistant can start
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.BackoffUnit < 0 {
		return fmt.Errorf("backoff_unit must not be negative")
	}
	if c.ContextSize < 1 {
		return fmt.Errorf("context_size must be at least 1, got %d", c.ContextSize)
	}
	return nil
}
