package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the emulator's runtime configuration: everything a
// session can tune without recompiling, loaded from erfindung.toml.
type Config struct {
	// Execution settings
	Execution struct {
		MaxCycles uint64 `toml:"max_cycles"`
		RAMWords  int    `toml:"ram_words"`
	} `toml:"execution"`

	// Debugger settings
	Debugger struct {
		NumberFormat  string `toml:"number_format"` // as_int, as_fp
		SourceContext int    `toml:"source_context"`
		HistorySize   int    `toml:"history_size"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		WindowScale int `toml:"window_scale"`
	} `toml:"display"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxCycles = 1000000
	cfg.Execution.RAMWords = 16384

	cfg.Debugger.NumberFormat = "as_int"
	cfg.Debugger.SourceContext = 5
	cfg.Debugger.HistorySize = 1000

	cfg.Display.WindowScale = 4

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
		configDir = filepath.Join(configDir, "erfindung")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "erfindung.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "erfindung")

	default:
		return "erfindung.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "erfindung.toml"
	}

	return filepath.Join(configDir, "erfindung.toml")
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
		logDir = filepath.Join(logDir, "erfindung", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "erfindung", "logs")

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

// LoadFrom loads configuration from path. A missing file yields
// DefaultConfig rather than an error, per erfindung.toml's documented
// fall-through behavior.
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

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
