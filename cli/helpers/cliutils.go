package helpers

import (
	"fmt"
	"strings"
)

// FormatValue renders a resolved setting value for a table cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return val.String()
	case []string:
		return strings.Join(val, ", ")
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Pluralize returns singular or plural form based on count
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
