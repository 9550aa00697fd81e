package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP API server settings.
type ServerConfig struct {
	// Addr is the listen address (e.g., ":8000").
	Addr string `mapstructure:"addr" yaml:"addr"`

	// ShutdownTimeoutSec bounds how long in-flight requests may take to
	// finish after a shutdown signal.
	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// ShutdownTimeout returns ShutdownTimeoutSec as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// StorageConfig selects and locates the database.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ClientConfig holds settings for the API client used by the CLI and TUI.
type ClientConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns TimeoutSec as a duration.
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme           string `mapstructure:"theme" yaml:"theme"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// envPrefix namespaces environment overrides, e.g. TODO_SERVER_ADDR.
const envPrefix = "TODO"

var configDefaults = map[string]any{
	"server.addr":                 ":8000",
	"server.shutdown_timeout_sec": 5,
	"storage.driver":              "sqlite",
	"storage.dsn":                 "todo.db",
	"log.level":                   "info",
	"log.format":                  "text",
	"client.base_url":             "http://localhost:8000/api",
	"client.timeout_sec":          30,
	"display.theme":               "default",
	"display.poll_interval_sec":   30,
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todo-tracker/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todo-tracker", "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file or
// environment override is present.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Server:  ServerConfig{Addr: ":8000", ShutdownTimeoutSec: 5},
		Storage: StorageConfig{Driver: "sqlite", DSN: "todo.db"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Client:  ClientConfig{BaseURL: "http://localhost:8000/api", TimeoutSec: 30},
		Display: DisplayConfig{Theme: "default", PollIntervalSec: 30},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Variables from a .env file in the working directory are loaded into the
// environment first, and TODO_* environment variables override file values.
// A missing config file is not an error.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and every key
	// is known to AutomaticEnv.
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *fs.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.PollIntervalSec <= 0 {
		cfg.Display.PollIntervalSec = 30
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("storage", cfg.Storage)
	v.Set("log", cfg.Log)
	v.Set("client", cfg.Client)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
