package helpers

import (
	"errors"
	"fmt"

	"github.com/prospector-dev/prospector/pkg/config/definition"
)

// Process exit statuses.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitCode maps a command error to the process exit status. Command-line
// parse failures exit with ExitUsage, every other failure with ExitFailure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, definition.ErrCommandLineParse):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// FormatError renders a command error for stderr. Usage errors point at the
// help output.
func FormatError(program string, err error) string {
	msg := fmt.Sprintf("%s: error: %v", program, err)
	if errors.Is(err, definition.ErrCommandLineParse) {
		msg += fmt.Sprintf("\nRun '%s --help' for usage.", program)
	}
	return msg
}
