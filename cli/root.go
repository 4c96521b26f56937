package cli

import (
	"context"
	"fmt"

	"github.com/prospector-dev/prospector/pkg/config"
	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/prospector-dev/prospector/pkg/logger"
	"github.com/prospector-dev/prospector/pkg/version"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Runner performs an analysis run with the resolved settings.
type Runner interface {
	Run(ctx context.Context, settings *config.Settings) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, settings *config.Settings) error

func (f RunnerFunc) Run(ctx context.Context, settings *config.Settings) error {
	return f(ctx, settings)
}

// Options configure the root command. Zero values select the shipped
// catalog, the OS file system, the working directory and the summary runner.
type Options struct {
	Catalog definition.Catalog
	Runner  Runner
	FS      afero.Fs
	BaseDir string
}

// app holds what the commands of one root share.
type app struct {
	opts     Options
	registry *definition.Registry
	binding  *config.FlagBinding
}

func RootCmd() *cobra.Command {
	return NewRootCommand(Options{})
}

// NewRootCommand builds the prospector command tree. Every registered setting
// becomes a persistent flag so subcommands resolve the same configuration.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Catalog.Tools == nil {
		opts.Catalog = definition.DefaultCatalog()
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	a := &app{opts: opts, registry: definition.CreateRegistry(opts.Catalog)}

	root := &cobra.Command{
		Use:               "prospector [flags] [PATH...]",
		Short:             "Performs static analysis of Python code",
		Version:           version.Get().String(),
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setupLogger,
		RunE:              a.run,
	}
	binding, err := config.BindFlags(root.PersistentFlags(), a.registry)
	if err != nil {
		panic(fmt.Sprintf("invalid settings schema: %v", err))
	}
	a.binding = binding

	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	root.PersistentFlags().String("env-file", ".env", "Dotenv file supplying PROSPECTOR_* variables")
	root.PersistentFlags().String("config-file", "", "Config file read before the project config files")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return config.WrapFlagError(err)
	})

	root.AddCommand(a.configCmd())
	return root
}

func (a *app) setupLogger(cmd *cobra.Command, _ []string) error {
	level, logJSON, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.SetupLogger(level, logJSON, cmd.ErrOrStderr())
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
	return nil
}

// resolve runs one resolution pass over the command line, the environment
// and the config files.
func (a *app) resolve(cmd *cobra.Command, args []string) (*config.Resolved, error) {
	ctx := cmd.Context()
	commandLine, err := a.binding.Source(args)
	if err != nil {
		return nil, err
	}
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get env-file flag: %w", err)
	}
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get config-file flag: %w", err)
	}
	sources, err := config.DefaultSources(ctx, a.registry, commandLine, config.SourceOptions{
		FS:         a.opts.FS,
		BaseDir:    a.opts.BaseDir,
		EnvFile:    envFile,
		ConfigFile: configFile,
	})
	if err != nil {
		return nil, err
	}
	return config.NewManager(a.registry, sources...).Resolve(ctx)
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	resolved, err := a.resolve(cmd, args)
	if err != nil {
		return err
	}
	settings, err := config.NewSettings(resolved, a.opts.Catalog)
	if err != nil {
		return err
	}
	runner := a.opts.Runner
	if runner == nil {
		runner = &SummaryRunner{Out: cmd.OutOrStdout(), Catalog: a.opts.Catalog}
	}
	return runner.Run(config.ContextWithResolved(cmd.Context(), resolved), settings)
}
