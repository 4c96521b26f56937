package helpers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	t.Run("Should map errors to exit statuses", func(t *testing.T) {
		parseErr := &definition.CommandLineParseError{Token: "--bogus", Cause: errors.New("unknown flag")}
		fileErr := &definition.ConfigFileParseError{Path: "setup.cfg", Line: 3, Cause: errors.New("bad")}

		assert.Equal(t, ExitOK, ExitCode(nil))
		assert.Equal(t, ExitUsage, ExitCode(parseErr))
		assert.Equal(t, ExitUsage, ExitCode(fmt.Errorf("wrapped: %w", parseErr)))
		assert.Equal(t, ExitFailure, ExitCode(fileErr))
		assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	})
}

func TestFormatError(t *testing.T) {
	t.Run("Should add a usage hint to command-line errors", func(t *testing.T) {
		err := &definition.CommandLineParseError{Token: "--bogus", Cause: errors.New("unknown flag")}

		msg := FormatError("prospector", err)

		assert.Contains(t, msg, "prospector: error: invalid command line argument --bogus")
		assert.Contains(t, msg, "Run 'prospector --help' for usage.")
	})

	t.Run("Should not add a hint to other errors", func(t *testing.T) {
		msg := FormatError("prospector", errors.New("boom"))

		assert.Equal(t, "prospector: error: boom", msg)
	})
}
