// ABOUTME: Configuration loader for the quill client
// ABOUTME: Layers defaults, config.yaml, .env and environment variables

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/markalston/quill/internal/client"
	"github.com/markalston/quill/internal/storage"
)

// AppName names the config directory
const AppName = "quill"

// FileName is the optional YAML config file inside the config directory
const FileName = "config.yaml"

// Config holds client settings. Later sources override earlier ones.
type Config struct {
	APIURL      string        `yaml:"api_url" env:"QUILL_API_URL"`
	Store       string        `yaml:"store" env:"QUILL_STORE"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"QUILL_HTTP_TIMEOUT"`
	LogLevel    string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string        `yaml:"log_format" env:"LOG_FORMAT"`

	// ConfigDir is where config.yaml, the identity store and debug.log live
	ConfigDir string `yaml:"-" env:"QUILL_CONFIG_DIR"`
}

// Defaults returns the built-in settings
func Defaults() Config {
	return Config{
		APIURL:    client.DefaultBaseURL,
		Store:     string(storage.KindSQLite),
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/quill, or ~/.config/quill
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// Load builds the configuration. dir, when set, overrides QUILL_CONFIG_DIR
// and the XDG default.
func Load(dir string) (Config, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	if dir == "" {
		dir = os.Getenv("QUILL_CONFIG_DIR")
	}
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := Defaults()
	if err := cfg.readFile(filepath.Join(dir, FileName)); err != nil {
		return Config{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.ConfigDir = dir

	cfg.Sanitize()
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Sanitize normalizes values and replaces unusable ones with defaults
func (c *Config) Sanitize() {
	d := Defaults()

	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = d.APIURL
	}

	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store == "" {
		c.Store = d.Store
	}

	if c.HTTPTimeout < 0 {
		c.HTTPTimeout = 0
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "json" {
		c.LogFormat = d.LogFormat
	}
}

// StoreKind parses Store
func (c Config) StoreKind() (storage.Kind, error) {
	return storage.ParseKind(c.Store)
}
