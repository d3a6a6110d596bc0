// Package config provides configuration types and defaults for bytechef.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DatabaseConfig locates the local workflow store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds HTTP API options. Addr is used by "serve", URL by
// clients that edit workflows on a remote server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	URL  string `mapstructure:"url"`
}

// CacheConfig controls the in-memory workflow cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ExecutorConfig controls the dry-run test executor.
type ExecutorConfig struct {
	// TaskDelay is slept before each task. Zero runs tasks back to back.
	TaskDelay time.Duration `mapstructure:"task_delay"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	// Exporter is one of "none", "stdout", "otlp".
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
}

// UIConfig controls the terminal editor.
type UIConfig struct {
	// OutputStyle is the glamour style for test results.
	OutputStyle string `mapstructure:"output_style"`
}

// Config holds all configuration options for bytechef.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DefaultDir returns the directory holding the config file, database and logs.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "bytechef")
	}
	return ".bytechef"
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	dir := DefaultDir()
	return Config{
		Database: DatabaseConfig{Path: filepath.Join(dir, "bytechef.db")},
		Server:   ServerConfig{Addr: "127.0.0.1:9555"},
		Cache:    CacheConfig{TTL: 30 * time.Second},
		Executor: ExecutorConfig{TaskDelay: 0},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "bytechef.log"),
		},
		Tracing: TracingConfig{Exporter: "none"},
		UI:      UIConfig{OutputStyle: "dark"},
	}
}

var validLevels = []string{"debug", "info", "warn", "error"}

var validExporters = []string{"none", "stdout", "otlp"}

var validOutputStyles = []string{"dark", "light", "notty", "ascii", "dracula", "tokyo-night", "pink"}

// Validate checks configuration values for errors.
func (c Config) Validate() error {
	var errs []error

	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
	}
	if c.Executor.TaskDelay < 0 {
		errs = append(errs, fmt.Errorf("executor.task_delay must not be negative, got %s", c.Executor.TaskDelay))
	}
	if c.Log.Level != "" && !contains(validLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of %s", c.Log.Level, strings.Join(validLevels, ", ")))
	}
	exporter := strings.ToLower(c.Tracing.Exporter)
	if exporter != "" && !contains(validExporters, exporter) {
		errs = append(errs, fmt.Errorf("tracing.exporter %q is not one of %s", c.Tracing.Exporter, strings.Join(validExporters, ", ")))
	}
	if exporter == "otlp" && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing.endpoint is required when tracing.exporter is otlp"))
	}

	if c.UI.OutputStyle != "" && !contains(validOutputStyles, c.UI.OutputStyle) {
		errs = append(errs, fmt.Errorf("ui.output_style %q is not one of %s", c.UI.OutputStyle, strings.Join(validOutputStyles, ", ")))
	}

	return errors.Join(errs...)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# bytechef configuration

# Local workflow store (SQLite)
# database:
#   path: ~/.config/bytechef/bytechef.db

# HTTP API
server:
  addr: 127.0.0.1:9555   # listen address for 'bytechef serve'
  # url: http://127.0.0.1:9555   # edit workflows on a remote server instead of the local store

# Workflow cache used by the API and the local store
cache:
  ttl: 30s

# Dry-run test executor
executor:
  task_delay: 0s   # pause before each task (makes long runs stoppable)

# Logging (always written to a file, never to the terminal)
log:
  level: info      # debug, info, warn, error
  # file: ~/.config/bytechef/bytechef.log

# OpenTelemetry tracing
tracing:
  exporter: none   # none, stdout, otlp
  # endpoint: localhost:4317

# Terminal editor
ui:
  output_style: dark   # dark, light, notty, ascii, dracula, tokyo-night, pink
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
