package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath returns the default config file location,
// ~/.config/timedctl/config.yaml (respecting XDG via os.UserConfigDir).
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(configDir, AppName, "config.yaml"), nil
}

// Load reads the configuration from path, or from the default location when
// path is empty. A missing file is created with defaults first, so a first
// run leaves a template for the user to edit.
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Config{}, err
		}
	}

	slog.Debug("Loading configuration", "path", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file does not exist, creating default", "path", path)
		if err := WriteDefault(path); err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w (edit %s)", err, path)
	}

	return cfg, nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories as needed.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := Default()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize default configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write default configuration: %w", err)
	}

	slog.Info("Created default configuration", "path", path)
	return nil
}
