package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"realmauth/internal/formatting"
	"realmauth/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir   = ".config/realmauth"
	configFileName  = "config.yaml"
	whoamiFileName  = "whoami.yaml"
	defaultLogLevel = "warn"
)

// osUserHomeDir is a variable so tests can point it at a temp dir.
var osUserHomeDir = os.UserHomeDir

// DefaultConfigDir returns ~/.config/realmauth.
func DefaultConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// Defaults returns the configuration used when nothing is configured. The
// whoami document defaults to whoami.yaml next to the config file.
func Defaults(configDir string) Config {
	return Config{
		WhoAmI:   filepath.Join(configDir, whoamiFileName),
		Output:   formatting.FormatTable,
		LogLevel: defaultLogLevel,
	}
}

// LoadConfig loads config.yaml from configDir on top of the defaults. A
// missing file is not an error.
func LoadConfig(configDir string) (Config, error) {
	config := Defaults(configDir)
	configFilePath := filepath.Join(configDir, configFileName)

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	if config.Output != "" {
		format, err := formatting.ParseOutputFormat(string(config.Output))
		if err != nil {
			return Config{}, fmt.Errorf("invalid config %s: %w", configFilePath, err)
		}
		config.Output = format
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", configFilePath, err)
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// ApplyEnv overrides config values with any REALMAUTH_* variables that are set.
func ApplyEnv(config Config, lookup func(string) (string, bool)) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvWhoAmI); ok && v != "" {
		config.WhoAmI = v
	}
	if v, ok := lookup(EnvAccess); ok && v != "" {
		config.Access = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		config.LogLevel = v
	}
	return config
}

// Save writes config to configDir/config.yaml, creating the directory.
func Save(configDir string, config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, configFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
