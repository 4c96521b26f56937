package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/prospector-dev/prospector/pkg/logger"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// Section is the config file section holding prospector settings.
const Section = "prospector"

// pyprojectSection is the table pyproject.toml keeps tool settings under.
const pyprojectSection = "tool.prospector"

// Candidate is a config file location considered by a ConfigFileSource.
type Candidate struct {
	Scope string
	Name  string
}

// ProjectFile is a file relative to the project base directory.
func ProjectFile(name string) Candidate { return Candidate{Scope: "project", Name: name} }

// UserConfigFile is a file under the user configuration directory.
func UserConfigFile(name string) Candidate { return Candidate{Scope: "user", Name: name} }

// HomeFile is a file under the user home directory.
func HomeFile(name string) Candidate { return Candidate{Scope: "home", Name: name} }

// ExplicitFile is a path given by the user. Unlike the other candidates it
// must exist.
func ExplicitFile(path string) Candidate { return Candidate{Scope: "explicit", Name: path} }

func (c Candidate) String() string {
	return c.Scope + ":" + c.Name
}

func (c Candidate) path(o *options) (string, bool) {
	switch c.Scope {
	case "user":
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", false
		}
		return filepath.Join(dir, c.Name), true
	case "home":
		dir, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		return filepath.Join(dir, c.Name), true
	case "project":
		if o.baseDir != "" && !filepath.IsAbs(c.Name) {
			return filepath.Join(o.baseDir, c.Name), true
		}
		return c.Name, true
	default:
		return c.Name, true
	}
}

// ProjectCandidates are the project-local files searched, in order.
func ProjectCandidates() []Candidate {
	return []Candidate{
		ProjectFile(".prospectorrc"),
		ProjectFile("setup.cfg"),
		ProjectFile("tox.ini"),
		ProjectFile("pyproject.toml"),
	}
}

// UserCandidates are the per-user files searched, in order.
func UserCandidates() []Candidate {
	return []Candidate{
		UserConfigFile(".prospectorrc"),
		HomeFile(".prospectorrc"),
	}
}

// ConfigFileSource serves values from the first candidate file that exists
// and holds a prospector section.
type ConfigFileSource struct {
	name   string
	rank   int
	path   string
	values map[string]RawValue
}

// NewConfigFileSource reads the first applicable candidate. Missing files are
// skipped; a malformed file fails with a ConfigFileParseError. Unknown keys
// are logged and ignored.
func NewConfigFileSource(
	ctx context.Context,
	registry *definition.Registry,
	candidates []Candidate,
	opts ...Option,
) (*ConfigFileSource, error) {
	o := newOptions(RankProjectFile, opts)
	log := logger.FromContext(ctx)
	src := &ConfigFileSource{
		name:   o.nameOr("config file"),
		rank:   o.rank,
		values: make(map[string]RawValue),
	}
	for _, c := range candidates {
		path, ok := c.path(o)
		if !ok {
			continue
		}
		data, err := readCandidate(o.fs, path)
		if err != nil {
			return nil, err
		}
		if data == nil {
			if c.Scope == "explicit" {
				return nil, fmt.Errorf("config file %s: %w", path, fs.ErrNotExist)
			}
			continue
		}
		entries, found, err := parseConfigFile(path, data)
		if err != nil {
			return nil, err
		}
		fileLog := log.With("path", path)
		if !found {
			if c.Scope == "explicit" {
				return nil, &definition.ConfigFileParseError{
					Path:  path,
					Cause: fmt.Errorf("no [%s] section", sectionFor(path)),
				}
			}
			fileLog.Debug("Config file has no prospector section")
			continue
		}
		src.path = path
		src.name = o.nameOr(path)
		for _, e := range entries {
			name := settingKey(e.key)
			if _, known := registry.Lookup(name); !known {
				fileLog.Warn("Ignoring unknown setting in config file", "key", e.key)
				continue
			}
			if prev, dup := src.values[name]; dup {
				fileLog.Warn("Config file sets a setting twice, keeping the later key",
					"setting", name, "previous", prev.Origin, "key", e.key)
			}
			src.values[name] = RawValue{Value: e.value, Origin: path + ":" + e.key}
		}
		fileLog.Debug("Loaded config file", "settings", len(src.values))
		return src, nil
	}
	return src, nil
}

func readCandidate(fsys afero.Fs, path string) ([]byte, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, nil
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return data, nil
}

type fileEntry struct {
	key   string
	value any
}

func parseConfigFile(path string, data []byte) ([]fileEntry, bool, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return parseTOML(path, data)
	}
	return parseINI(path, data)
}

func parseINI(path string, data []byte) ([]fileEntry, bool, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		IgnoreInlineComment:        true,
	}, data)
	if err != nil {
		return nil, false, &definition.ConfigFileParseError{
			Path:  path,
			Line:  iniErrorLine(data, err),
			Cause: err,
		}
	}
	section, err := file.GetSection(Section)
	if err != nil {
		return nil, false, nil
	}
	keys := section.Keys()
	entries := make([]fileEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, fileEntry{key: key.Name(), value: key.Value()})
	}
	return entries, true, nil
}

// iniErrorLine locates the line an ini parse error quotes. The library
// reports the offending text rather than its position.
func iniErrorLine(data []byte, err error) int {
	var quoted string
	var delimErr ini.ErrDelimiterNotFound
	if errors.As(err, &delimErr) {
		quoted = delimErr.Line
	} else if idx := strings.LastIndex(err.Error(), ": "); idx >= 0 {
		quoted = err.Error()[idx+2:]
	}
	quoted = strings.TrimSpace(quoted)
	if quoted == "" {
		return 0
	}
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == quoted {
			return i + 1
		}
	}
	return 0
}

// sectionFor names the section a file is expected to hold.
func sectionFor(path string) string {
	if strings.EqualFold(filepath.Base(path), "pyproject.toml") {
		return pyprojectSection
	}
	return Section
}

func parseTOML(path string, data []byte) ([]fileEntry, bool, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		parseErr := &definition.ConfigFileParseError{Path: path, Cause: err}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			parseErr.Line, parseErr.Column = decodeErr.Position()
		}
		return nil, false, parseErr
	}
	sections := []string{Section, pyprojectSection}
	if sectionFor(path) == pyprojectSection {
		sections = []string{pyprojectSection}
	}
	for _, name := range sections {
		table, ok := lookupTable(doc, name)
		if !ok {
			continue
		}
		entries := make([]fileEntry, 0, len(table))
		for _, key := range slices.Sorted(maps.Keys(table)) {
			entries = append(entries, fileEntry{key: key, value: table[key]})
		}
		return entries, true, nil
	}
	return nil, false, nil
}

func lookupTable(doc map[string]any, dotted string) (map[string]any, bool) {
	current := doc
	for _, part := range strings.Split(dotted, ".") {
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Type returns the source type identifier.
func (c *ConfigFileSource) Type() SourceType { return SourceFile }

// Name describes the source.
func (c *ConfigFileSource) Name() string { return c.name }

// Rank returns the precedence rank.
func (c *ConfigFileSource) Rank() int { return c.rank }

// Path returns the file the values came from, or "" when no candidate applied.
func (c *ConfigFileSource) Path() string { return c.path }

// Lookup returns the raw value of the setting's key in the selected file.
func (c *ConfigFileSource) Lookup(name string) (RawValue, bool) {
	v, ok := c.values[name]
	return v, ok
}
