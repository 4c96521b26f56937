package helpers

import (
	"fmt"
	"strings"
)

// OutputFormat represents different output formats
type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
	OutputFormatYAML  OutputFormat = "yaml"
)

// OutputFormats lists the accepted --format values.
var OutputFormats = []OutputFormat{OutputFormatTable, OutputFormatJSON, OutputFormatYAML}

// ParseOutputFormat validates a --format value.
func ParseOutputFormat(value string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(value)))
	for _, f := range OutputFormats {
		if f == format {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (choose from table, json, yaml)", value)
}
