// Package config holds the compiler's on-disk settings: the output
// file name, whether the quadruple dump is printed, and whether the
// token diagnostic stream is echoed during compilation.
//
// Grounded on lookbusy1344-arm_emulator/config/config.go: the same
// struct-of-sections-plus-DefaultConfig-plus-platform-aware-path shape,
// narrowed to the handful of settings this compiler actually has.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the compiler's persisted configuration.
type Config struct {
	Output struct {
		TargetFile string `toml:"target_file"`
	} `toml:"output"`

	Diagnostics struct {
		Debug      bool `toml:"debug"`
		EchoTokens bool `toml:"echo_tokens"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns a Config with the compiler's default settings.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Output.TargetFile = "target.txt"
	cfg.Diagnostics.Debug = false
	cfg.Diagnostics.EchoTokens = true
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
		configDir = filepath.Join(configDir, "triac")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "triac")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file, falling back
// to defaults if it does not exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the given file.
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

// Save writes c to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes c to the given file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
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
