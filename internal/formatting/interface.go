package formatting

import (
	"fmt"
	"strings"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable    OutputFormat = "table"    // Rich table output
	FormatJSON     OutputFormat = "json"     // JSON output
	FormatYAML     OutputFormat = "yaml"     // YAML output
	FormatTemplate OutputFormat = "template" // Go template, one execution per access
)

// ValidOutputFormats lists the accepted values of OutputFormat.
var ValidOutputFormats = []OutputFormat{FormatTable, FormatJSON, FormatYAML, FormatTemplate}

// ParseOutputFormat converts a flag or config value into an OutputFormat.
// Matching is case-insensitive.
func ParseOutputFormat(s string) (OutputFormat, error) {
	normalized := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range ValidOutputFormats {
		if f == normalized {
			return f, nil
		}
	}
	valid := make([]string, len(ValidOutputFormats))
	for i, f := range ValidOutputFormats {
		valid[i] = string(f)
	}
	return "", fmt.Errorf("unknown output format %q (valid: %s)", s, strings.Join(valid, ", "))
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	// Template is required when Format is FormatTemplate.
	Template string
	// Color enables colored headers and markers in table output.
	Color bool
	// NoHeaders omits the table header row.
	NoHeaders bool
}
