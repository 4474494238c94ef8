// Package config loads winnow's configuration: yaml file, then environment
// overrides, on top of compiled-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the winnow configuration.
type Config struct {
	Filter FilterConfig `yaml:"filter"`
	Exec   ExecConfig   `yaml:"exec"`
}

// FilterConfig holds streaming-filter settings.
type FilterConfig struct {
	UpdateIntervalMs int    `yaml:"update_interval_ms"` // Min gap between progress snapshots
	Winwidth         int    `yaml:"winwidth"`            // Display width matched lines are fit to
	EnableIcon       bool   `yaml:"enable_icon"`         // Prepend file-type icons
	Algo             string `yaml:"algo"`                // Default scorer: subseq or v2
}

// ExecConfig holds cached-executor settings.
type ExecConfig struct {
	OutputThreshold int `yaml:"output_threshold"` // Line count above which output spills to a tempfile
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Filter: FilterConfig{
			UpdateIntervalMs: 300,
			Winwidth:         62,
			EnableIcon:       false,
			Algo:             "subseq",
		},
		Exec: ExecConfig{
			OutputThreshold: 100000,
		},
	}
}

// ConfigFile returns the path of the config file. WINNOW_CONFIG overrides
// the default ~/.config/winnow/config.yaml.
func ConfigFile() string {
	if path := os.Getenv("WINNOW_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "winnow", "config.yaml")
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFromFile(ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus env overrides still need validating below.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v, ok := envInt("WINNOW_UPDATE_INTERVAL_MS"); ok {
		c.Filter.UpdateIntervalMs = v
	}
	if v, ok := envInt("WINNOW_WINWIDTH"); ok {
		c.Filter.Winwidth = v
	}
	if v, ok := envInt("WINNOW_OUTPUT_THRESHOLD"); ok {
		c.Exec.OutputThreshold = v
	}
	if v := os.Getenv("WINNOW_ALGO"); v != "" {
		c.Filter.Algo = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Filter.UpdateIntervalMs <= 0 {
		return fmt.Errorf("filter.update_interval_ms must be positive, got %d", c.Filter.UpdateIntervalMs)
	}
	if c.Filter.Winwidth < 0 {
		return fmt.Errorf("filter.winwidth must not be negative, got %d", c.Filter.Winwidth)
	}
	if c.Exec.OutputThreshold < 0 {
		return fmt.Errorf("exec.output_threshold must not be negative, got %d", c.Exec.OutputThreshold)
	}
	switch c.Filter.Algo {
	case "subseq", "v2":
	default:
		return fmt.Errorf("filter.algo must be subseq or v2, got %q", c.Filter.Algo)
	}
	return nil
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
