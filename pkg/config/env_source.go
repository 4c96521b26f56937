package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
	"github.com/prospector-dev/prospector/pkg/config/definition"
)

// EnvironmentVariableSource serves values from PREFIX_<NAME> variables. The
// environment is snapshotted at construction.
type EnvironmentVariableSource struct {
	name    string
	rank    int
	koanf   *koanf.Koanf
	origins map[string]string
}

// NewEnvironmentVariableSource snapshots the environment for every registered
// setting. Values are not validated here; invalid text fails during
// resolution. A dotenv file given with WithEnvFile supplies variables the
// process environment does not define.
func NewEnvironmentVariableSource(
	registry *definition.Registry,
	opts ...Option,
) (*EnvironmentVariableSource, error) {
	o := newOptions(RankEnvironment, opts)
	src := &EnvironmentVariableSource{
		name:    o.nameOr("environment"),
		rank:    o.rank,
		koanf:   koanf.New("."),
		origins: make(map[string]string),
	}
	envToSetting := make(map[string]string, registry.Len())
	for _, s := range registry.All() {
		envToSetting[s.EnvVar(o.prefix)] = s.Name
	}
	if o.envFile != "" {
		if err := src.loadDotenv(o, envToSetting); err != nil {
			return nil, err
		}
	}
	if err := src.koanf.Load(env.Provider(".", env.Opt{
		Prefix: o.prefix,
		TransformFunc: func(key, value string) (string, any) {
			name, ok := envToSetting[key]
			if !ok {
				name, ok = envToSetting[o.prefix+key]
			}
			if !ok {
				return "", nil
			}
			src.origins[name] = o.prefix + strings.TrimPrefix(key, o.prefix)
			return name, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return src, nil
}

func (e *EnvironmentVariableSource) loadDotenv(o *options, envToSetting map[string]string) error {
	path := o.envFile
	if o.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(o.baseDir, path)
	}
	file, err := o.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open env file %s: %w", path, err)
	}
	defer file.Close()
	entries, err := godotenv.Parse(file)
	if err != nil {
		return &definition.ConfigFileParseError{Path: path, Cause: err}
	}
	values := make(map[string]any)
	for key, value := range entries {
		name, ok := envToSetting[strings.TrimSpace(key)]
		if !ok {
			continue
		}
		values[name] = value
		e.origins[name] = path + ":" + key
	}
	if err := e.koanf.Load(rawMap(values), nil); err != nil {
		return fmt.Errorf("failed to apply env file %s: %w", path, err)
	}
	return nil
}

// Type returns the source type identifier.
func (e *EnvironmentVariableSource) Type() SourceType { return SourceEnv }

// Name describes the source.
func (e *EnvironmentVariableSource) Name() string { return e.name }

// Rank returns the precedence rank.
func (e *EnvironmentVariableSource) Rank() int { return e.rank }

// Lookup returns the raw text of the setting's environment variable.
func (e *EnvironmentVariableSource) Lookup(name string) (RawValue, bool) {
	if !e.koanf.Exists(name) {
		return RawValue{}, false
	}
	return RawValue{Value: e.koanf.Get(name), Origin: e.origins[name]}, true
}

// rawMap is a koanf.Provider adapter for map[string]any data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
