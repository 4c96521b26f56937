package config

import (
	"github.com/spf13/afero"
)

// Option customizes a source.
type Option func(*options)

type options struct {
	rank    int
	name    string
	fs      afero.Fs
	baseDir string
	envFile string
	prefix  string
}

func newOptions(defaultRank int, opts []Option) *options {
	o := &options{
		rank:   defaultRank,
		fs:     afero.NewOsFs(),
		prefix: EnvPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) nameOr(fallback string) string {
	if o.name != "" {
		return o.name
	}
	return fallback
}

// WithRank overrides the precedence rank of a source.
func WithRank(rank int) Option {
	return func(o *options) { o.rank = rank }
}

// WithName overrides the diagnostic name of a source.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithFS sets the file system config and dotenv files are read from.
func WithFS(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithBaseDir sets the directory project-relative candidates resolve against.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// WithEnvFile adds a dotenv file whose entries back the environment source.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}
