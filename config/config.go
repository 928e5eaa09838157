package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

// TieBreakMode names the ordering of events that collide on the same
// millisecond. The token format's conventions were inferred from
// performance-RNN practice, so this stays a setting rather than a constant.
type TieBreakMode string

const (
	TieBreakOffFirst TieBreakMode = "off-first"
	TieBreakOnFirst  TieBreakMode = "on-first"
)

// EncodeConfig holds encoding-core settings
type EncodeConfig struct {
	TieBreak TieBreakMode `json:"tieBreak,omitempty"`
}

// BatchConfig holds batch-run settings
type BatchConfig struct {
	Workers    int      `json:"workers,omitempty"`
	Extensions []string `json:"extensions,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Plain bool `json:"plain,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Encode EncodeConfig `json:"encode,omitempty"`
	Batch  BatchConfig  `json:"batch,omitempty"`
	UI     UIConfig     `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Encode: EncodeConfig{
			TieBreak: TieBreakOffFirst,
		},
		Batch: BatchConfig{
			Workers:    runtime.NumCPU(),
			Extensions: []string{".mid", ".midi"},
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midi2performance"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
