package config

import "strings"

// EnvPrefix is prepended to upper-cased setting names to form environment
// variable names.
const EnvPrefix = "PROSPECTOR_"

// SourceType identifies the origin of a configuration value.
type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceUnset   SourceType = "unset"
	SourceCLI     SourceType = "cli"
	SourceEnv     SourceType = "env"
	SourceFile    SourceType = "file"
)

// RawValue is an unvalidated candidate value. Origin names the exact place it
// came from: a flag, an environment variable, or a file key.
type RawValue struct {
	Value  any
	Origin string
}

// Source supplies raw candidate values for settings. Sources read their
// backing resource once at construction; Lookup never performs I/O.
type Source interface {
	// Type returns the source type identifier.
	Type() SourceType
	// Name describes the source for diagnostics.
	Name() string
	// Rank orders sources; lower ranks take precedence.
	Rank() int
	// Lookup returns the raw value for a setting, if this source has one.
	Lookup(name string) (RawValue, bool)
}

// Ranks used by DefaultSources.
const (
	RankCommandLine = 0
	RankEnvironment = 10
	RankProjectFile = 20
	RankUserFile    = 30
)

// staticSource serves a fixed map of values.
type staticSource struct {
	name   string
	typ    SourceType
	rank   int
	values map[string]RawValue
}

// NewStaticSource creates a source over fixed values, keyed by setting name.
// It is useful for embedding callers and tests.
func NewStaticSource(name string, typ SourceType, rank int, values map[string]any) Source {
	raw := make(map[string]RawValue, len(values))
	for key, v := range values {
		raw[key] = RawValue{Value: v, Origin: name + ":" + key}
	}
	return &staticSource{name: name, typ: typ, rank: rank, values: raw}
}

func (s *staticSource) Type() SourceType { return s.typ }
func (s *staticSource) Name() string     { return s.name }
func (s *staticSource) Rank() int        { return s.rank }

func (s *staticSource) Lookup(name string) (RawValue, bool) {
	v, ok := s.values[name]
	return v, ok
}

// settingKey normalizes a config-file or environment key to setting-name form.
func settingKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", "_"))
}
