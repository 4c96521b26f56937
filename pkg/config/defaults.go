package config

import (
	"context"
	"fmt"

	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/spf13/afero"
)

// SourceOptions configures DefaultSources.
type SourceOptions struct {
	FS         afero.Fs
	BaseDir    string
	EnvFile    string
	ConfigFile string
}

// DefaultSources assembles the standard precedence chain: the command line,
// the environment, the project config file and the user config file. An
// explicit config file takes the place of the project candidates it precedes.
func DefaultSources(
	ctx context.Context,
	registry *definition.Registry,
	commandLine Source,
	so SourceOptions,
) ([]Source, error) {
	common := []Option{WithFS(so.FS), WithBaseDir(so.BaseDir)}
	env, err := NewEnvironmentVariableSource(registry, append(common, WithEnvFile(so.EnvFile))...)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	candidates := ProjectCandidates()
	if so.ConfigFile != "" {
		candidates = append([]Candidate{ExplicitFile(so.ConfigFile)}, candidates...)
	}
	project, err := NewConfigFileSource(ctx, registry, candidates, common...)
	if err != nil {
		return nil, fmt.Errorf("failed to read project configuration: %w", err)
	}
	user, err := NewConfigFileSource(ctx, registry, UserCandidates(),
		append(common, WithRank(RankUserFile), WithName("user config file"))...)
	if err != nil {
		return nil, fmt.Errorf("failed to read user configuration: %w", err)
	}
	sources := []Source{env, project, user}
	if commandLine != nil {
		sources = append([]Source{commandLine}, sources...)
	}
	return sources, nil
}
