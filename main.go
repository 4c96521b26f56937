package main

import (
	"fmt"
	"os"

	"github.com/prospector-dev/prospector/cli"
	"github.com/prospector-dev/prospector/cli/helpers"
)

func main() {
	cmd := cli.RootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, helpers.FormatError(cmd.Name(), err))
		os.Exit(helpers.ExitCode(err))
	}
}
