// Package config loads the shiwake configuration from file, environment, and
// defaults. Rules live in a separate JSON file (see the rules package); this
// package only knows where that file is.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// CacheConfig configures the extracted-metadata cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// HistoryConfig configures the run journal.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	// DefaultDestination receives files that no rule matches.
	DefaultDestination string `mapstructure:"default_destination"`

	// ConflictPolicy is one of skip, overwrite, rename.
	ConflictPolicy string `mapstructure:"conflict_policy"`

	// DefaultOperation (move or copy) applies to unmatched files sent to the
	// default destination.
	DefaultOperation string `mapstructure:"default_operation"`

	// Preview makes every run a dry run unless overridden on the command
	// line.
	Preview bool `mapstructure:"preview"`

	// RulesPath is the JSON rules file location.
	RulesPath string `mapstructure:"rules_path"`

	// Workers is the number of concurrent per-file workers.
	Workers int `mapstructure:"workers"`

	Cache   CacheConfig   `mapstructure:"cache"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/shiwake/config.yaml
//   - $HOME/.config/shiwake/config.yaml
//
// Environment variables are prefixed with SHIWAKE_ (e.g.
// SHIWAKE_CONFLICT_POLICY).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "shiwake"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "shiwake"))

	v.SetEnvPrefix("SHIWAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, homeDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.DefaultDestination, &cfg.RulesPath, &cfg.Cache.Path, &cfg.History.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	return &cfg, nil
}

// setDefaults registers every default value on the viper instance.
func setDefaults(v *viper.Viper, homeDir string) {
	configDir := filepath.Join(homeDir, ".config", "shiwake")

	v.SetDefault("default_destination", filepath.Join(homeDir, "Unsorted"))
	v.SetDefault("conflict_policy", DefaultConflictPolicy)
	v.SetDefault("default_operation", DefaultOperation)
	v.SetDefault("preview", DefaultPreview)
	v.SetDefault("rules_path", filepath.Join(configDir, "rules.json"))
	v.SetDefault("workers", DefaultWorkers)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", filepath.Join(xdg.CacheHome, "shiwake", "metadata"))

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(configDir, ".history"))
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // empty means the default XDG state path
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"processor": "info",
		"engine":    "info",
		"watch":     "info",
	})
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "shiwake"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "shiwake"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Shiwake File Organizer Configuration

# Destination for files that no rule matches
default_destination: %s

# What to do when a destination path already exists: skip, overwrite, rename
conflict_policy: %s

# Operation for unmatched files sent to the default destination: move, copy
default_operation: %s

# When true, every run is a dry run; pass --apply (or set this to false)
# to commit file operations
preview: %t

# Rules file (JSON)
rules_path: %s

# Concurrent per-file workers
workers: %d

# Extracted-metadata cache
cache:
  enabled: true
  path: %s

# Run history journal
history:
  enabled: true
  path: %s
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means $XDG_STATE_HOME/shiwake/shiwake.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30
    max_backups: 5
    daily: true
`,
		filepath.Join(homeDir, "Unsorted"),
		DefaultConflictPolicy,
		DefaultOperation,
		DefaultPreview,
		filepath.Join(configDir, "rules.json"),
		DefaultWorkers,
		filepath.Join(xdg.CacheHome, "shiwake", "metadata"),
		filepath.Join(configDir, ".history"),
		DefaultRetentionDays,
	)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
