// Package config handles portscout configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Preference storage backends.
const (
	PrefsBackendFile   = "file"
	PrefsBackendSQLite = "sqlite"
)

// Config is the root configuration structure for portscout.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Agent settings (the scan agent portscout talks to)
	Agent AgentConfig `yaml:"agent" mapstructure:"agent"`

	// Prefs settings (where grid preferences live)
	Prefs PrefsConfig `yaml:"prefs" mapstructure:"prefs"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global portscout settings.
type GlobalConfig struct {
	// DataDir is where portscout stores its data (default: ~/.local/share/portscout).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/portscout).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// AgentConfig contains scan agent connection settings.
type AgentConfig struct {
	// URL is the base URL of the scan agent's HTTP API.
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout bounds a single agent request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// PollInterval is how often the TUI refreshes the catalog.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// PrefsConfig contains preference storage settings.
type PrefsConfig struct {
	// Backend selects the storage backend (file, sqlite).
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Path overrides the backend's storage location.
	Path string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The TUI always logs to a file.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// RefreshInterval is how often to redraw status information.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// Theme is the color theme (default, dark, solarized).
	Theme string `yaml:"theme" mapstructure:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "portscout"),
			ConfigDir: filepath.Join(homeDir, ".config", "portscout"),
		},
		Agent: AgentConfig{
			URL:          "http://127.0.0.1:8731",
			Timeout:      10 * time.Second,
			PollInterval: 30 * time.Second,
		},
		Prefs: PrefsConfig{
			Backend: PrefsBackendFile,
			Path:    "", // Will be set under DataDir
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		TUI: TUIConfig{
			RefreshInterval: 2 * time.Second,
			Theme:           "default",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Agent.URL == "" {
		return fmt.Errorf("agent.url is required")
	}

	if c.Agent.Timeout < 1*time.Second {
		return fmt.Errorf("agent.timeout must be at least 1s")
	}

	if c.Agent.PollInterval < 1*time.Second {
		return fmt.Errorf("agent.poll_interval must be at least 1s")
	}

	switch c.Prefs.Backend {
	case PrefsBackendFile, PrefsBackendSQLite:
		// ok
	default:
		return fmt.Errorf("prefs.backend must be one of file, sqlite")
	}

	if c.TUI.RefreshInterval < 100*time.Millisecond {
		return fmt.Errorf("tui.refresh_interval must be at least 100ms")
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// PrefsPath returns the preference storage location for the configured
// backend.
func (c *Config) PrefsPath() string {
	if c.Prefs.Path != "" {
		return c.Prefs.Path
	}
	if c.Prefs.Backend == PrefsBackendSQLite {
		return filepath.Join(c.Global.DataDir, "portscout.db")
	}
	return filepath.Join(c.Global.DataDir, "settings.json")
}

// LogFilePath returns the log file location, defaulting under DataDir.
func (c *Config) LogFilePath() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.Global.DataDir, "portscout.log")
}
