package config

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/prospector-dev/prospector/pkg/config/definition"
)

// Settings is the typed view of a resolved prospector configuration.
type Settings struct {
	// Behaviour
	ZeroExit       bool     `koanf:"zero_exit"         json:"zero_exit"         yaml:"zero_exit"`
	Autodetect     bool     `koanf:"autodetect"        json:"autodetect"        yaml:"autodetect"`
	Uses           []string `koanf:"uses"              json:"uses"              yaml:"uses"`
	Blending       bool     `koanf:"blending"          json:"blending"          yaml:"blending"`
	CommonPlugin   bool     `koanf:"common_plugin"     json:"common_plugin"     yaml:"common_plugin"`
	DieOnToolError bool     `koanf:"die_on_tool_error" json:"die_on_tool_error" yaml:"die_on_tool_error"`

	// Warnings
	DocWarnings   bool   `koanf:"doc_warnings"    json:"doc_warnings"              yaml:"doc_warnings"`
	TestWarnings  bool   `koanf:"test_warnings"   json:"test_warnings"             yaml:"test_warnings"`
	StyleWarnings bool   `koanf:"style_warnings"  json:"style_warnings"            yaml:"style_warnings"`
	FullPep8      bool   `koanf:"full_pep8"       json:"full_pep8"                 yaml:"full_pep8"`
	MaxLineLength *int   `koanf:"max_line_length" json:"max_line_length,omitempty" yaml:"max_line_length,omitempty" validate:"omitempty,min=1"`
	Strictness    string `koanf:"strictness"      json:"strictness"                yaml:"strictness"                validate:"oneof=veryhigh high medium low verylow"`

	// Output
	ExternalConfig string `koanf:"external_config" json:"external_config"         yaml:"external_config"         validate:"oneof=none merge only"`
	MessagesOnly   bool   `koanf:"messages_only"   json:"messages_only"           yaml:"messages_only"`
	SummaryOnly    bool   `koanf:"summary_only"    json:"summary_only"            yaml:"summary_only"`
	OutputFormat   string `koanf:"output_format"   json:"output_format,omitempty" yaml:"output_format,omitempty"`
	AbsolutePaths  bool   `koanf:"absolute_paths"  json:"absolute_paths"          yaml:"absolute_paths"`

	// Tools
	Tools        []string `koanf:"tools"         json:"tools,omitempty" yaml:"tools,omitempty"`
	WithTools    []string `koanf:"with_tools"    json:"with_tools"      yaml:"with_tools"      validate:"dive,known_tool"`
	WithoutTools []string `koanf:"without_tools" json:"without_tools"   yaml:"without_tools"   validate:"dive,known_tool"`

	// Profiles
	Profiles    []string `koanf:"profiles"     json:"profiles"     yaml:"profiles"`
	ProfilePath []string `koanf:"profile_path" json:"profile_path" yaml:"profile_path"`

	// Paths
	IgnorePatterns []string `koanf:"ignore_patterns" json:"ignore_patterns" yaml:"ignore_patterns"`
	IgnorePaths    []string `koanf:"ignore_paths"    json:"ignore_paths"    yaml:"ignore_paths"`
	Path           string   `koanf:"path"            json:"path,omitempty"  yaml:"path,omitempty"`
	CheckPaths     []string `koanf:"checkpath"       json:"checkpath"       yaml:"checkpath"`
}

// NewSettings decodes a resolved configuration and validates it against the
// catalog the registry was built from.
func NewSettings(resolved *Resolved, catalog definition.Catalog) (*Settings, error) {
	var settings Settings
	if err := resolved.Decode(&settings); err != nil {
		return nil, err
	}
	if err := newValidator(catalog).Struct(&settings); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return &settings, nil
}

func newValidator(catalog definition.Catalog) *validator.Validate {
	v := validator.New()
	known := slices.Clone(catalog.Tools)
	// Registration only fails for an empty tag or a nil function.
	_ = v.RegisterValidation("known_tool", func(fl validator.FieldLevel) bool {
		return slices.Contains(known, fl.Field().String())
	})
	return v
}

// ToolsToRun returns the tools an analysis run uses: the explicit tool list
// when set, otherwise the catalog defaults plus with_tools, minus
// without_tools. The result is sorted.
func (s *Settings) ToolsToRun(catalog definition.Catalog) []string {
	if len(s.Tools) > 0 {
		return sortedUnique(s.Tools)
	}
	tools := slices.Clone(catalog.DefaultTools)
	tools = append(tools, s.WithTools...)
	tools = slices.DeleteFunc(tools, func(tool string) bool {
		return slices.Contains(s.WithoutTools, tool)
	})
	return sortedUnique(tools)
}

func sortedUnique(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
