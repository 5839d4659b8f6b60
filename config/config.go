// Package config loads and saves the TOML configuration file that
// parameterizes execution limits, debugger defaults, and display settings
// (spec.md §6, SPEC_FULL.md §6 expansion), following the teacher's
// BurntSushi/toml-backed config layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the stack machine's on-disk configuration.
type Config struct {
	Execution struct {
		MemorySize    int    `toml:"memory_size"`
		MaxIterations uint64 `toml:"max_iterations"`
		SafeMode      bool   `toml:"safe_mode"`
	} `toml:"execution"`

	Debugger struct {
		HistorySize       int   `toml:"history_size"`
		BreakpointsOnLoad []int `toml:"breakpoints_on_load"`
	} `toml:"debugger"`

	Display struct {
		ColorOutput       bool `toml:"color_output"`
		StackDisplayDepth int  `toml:"stack_display_depth"`
	} `toml:"display"`
}

// DefaultConfig returns a configuration with spec.md-mandated defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MemorySize = 65536 // spec.md §3/§6 default heap size
	cfg.Execution.MaxIterations = 1000000
	cfg.Execution.SafeMode = false

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.BreakpointsOnLoad = nil

	cfg.Display.ColorOutput = true
	cfg.Display.StackDisplayDepth = 16

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "svm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "svm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "svm", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "svm", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, falling back to
// defaults when the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file, creating parent
// directories as needed.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
