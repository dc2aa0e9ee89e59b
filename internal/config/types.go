package config

import (
	"fmt"

	"realmauth/internal/formatting"
)

// Environment variables that override values from the config file.
const (
	EnvWhoAmI   = "REALMAUTH_WHOAMI"
	EnvAccess   = "REALMAUTH_ACCESS"
	EnvLogLevel = "REALMAUTH_LOG_LEVEL"
)

// Config is the CLI configuration stored in config.yaml.
type Config struct {
	// WhoAmI is the path of the whoami document.
	WhoAmI string `yaml:"whoami,omitempty"`
	// Access is the access ID to select after loading, when present.
	Access string `yaml:"access,omitempty"`
	// Output is the default output format.
	Output formatting.OutputFormat `yaml:"output,omitempty"`
	// Template is the Go template used with the template output format.
	Template string `yaml:"template,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty"`
	// StrictIDs requires realm and tenant IDs to be UUIDs.
	StrictIDs bool `yaml:"strictIds,omitempty"`
}

// Validate checks the values that have a fixed set of choices.
func (c Config) Validate() error {
	if c.Output != "" {
		if _, err := formatting.ParseOutputFormat(string(c.Output)); err != nil {
			return err
		}
	}
	if c.Output == formatting.FormatTemplate && c.Template == "" {
		return fmt.Errorf("output format %q requires a template", formatting.FormatTemplate)
	}
	return nil
}
