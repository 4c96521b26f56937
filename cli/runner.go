package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prospector-dev/prospector/cli/helpers"
	"github.com/prospector-dev/prospector/pkg/config"
	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/prospector-dev/prospector/pkg/logger"
)

// SummaryRunner stands in for the analysis engine: it reports what a run
// would do with the resolved settings.
type SummaryRunner struct {
	Out     io.Writer
	Catalog definition.Catalog
}

func (r *SummaryRunner) Run(ctx context.Context, settings *config.Settings) error {
	log := logger.FromContext(ctx)
	if resolved := config.FromContext(ctx); resolved != nil {
		for _, name := range resolved.Names() {
			p := resolved.Provenance(name)
			log.Debug("Setting provenance", "setting", name, "source", p.Source, "origin", p.Origin)
		}
	}
	tools := settings.ToolsToRun(r.Catalog)
	paths := settings.CheckPaths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	log.Info("Configuration resolved", "tools", len(tools), "strictness", settings.Strictness)
	_, err := fmt.Fprintf(r.Out, "Would run %d %s (%s) at %s strictness on %s\n",
		len(tools), helpers.Pluralize(len(tools), "tool", "tools"), strings.Join(tools, ", "),
		settings.Strictness, strings.Join(paths, " "))
	return err
}
