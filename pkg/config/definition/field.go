package definition

import (
	"fmt"
	"slices"
	"strings"
)

// MergePolicy decides how values from several sources combine.
type MergePolicy int

const (
	// MergeOverride keeps the value of the highest-precedence source.
	MergeOverride MergePolicy = iota
	// MergeAppend concatenates list values from every source.
	MergeAppend
)

func (p MergePolicy) String() string {
	if p == MergeAppend {
		return "append"
	}
	return "override"
}

// unsetValue marks a setting that resolved to nothing.
type unsetValue struct{}

func (unsetValue) String() string { return "<unset>" }

// Unset is the resolved value of a setting with no source and no default.
var Unset any = unsetValue{}

// IsUnset reports whether v is the Unset sentinel.
func IsUnset(v any) bool {
	_, ok := v.(unsetValue)
	return ok
}

// Setting declares a recognized configuration parameter.
type Setting struct {
	Name       string      // Unique key, e.g. "max_line_length"
	Type       ValueType   // Validator for raw values
	Default    any         // nil means no default
	Merge      MergePolicy // Combination rule across sources
	Flags      []string    // Command-line aliases like "-s" or "--strictness"
	Positional bool        // Binds positional command-line arguments
	Metavar    string      // Placeholder shown in usage
	Help       string      // Usage description
}

// HasDefault reports whether the setting declares a default.
func (s *Setting) HasDefault() bool {
	return s.Default != nil
}

// Choices returns the legal values for choice-typed settings.
func (s *Setting) Choices() []string {
	return ChoicesOf(s.Type)
}

// EnvVar returns the environment variable consulted for this setting.
func (s *Setting) EnvVar(prefix string) string {
	return prefix + strings.ToUpper(s.Name)
}

// Validate coerces raw through the setting's type. Validation errors carry
// the setting name and origin.
func (s *Setting) Validate(raw any, origin string) (any, error) {
	v, err := s.Type.Validate(raw)
	if err != nil {
		return nil, Attribute(err, s.Name, origin)
	}
	return v, nil
}

// CLIFlags returns the declared aliases, or a derived long flag when none are
// declared. Booleans defaulting to true derive a --no-<name> flag.
func (s *Setting) CLIFlags() []string {
	if len(s.Flags) > 0 {
		return slices.Clone(s.Flags)
	}
	if s.Positional {
		return nil
	}
	name := strings.ReplaceAll(s.Name, "_", "-")
	if s.Type.Kind() == KindBoolean {
		if def, ok := s.Default.(bool); ok && def {
			return []string{"--no-" + name}
		}
	}
	return []string{"--" + name}
}

// Registry holds the recognized settings in registration order.
type Registry struct {
	settings []*Setting
	byName   map[string]*Setting
	flags    map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Setting),
		flags:  make(map[string]string),
	}
}

// Register adds a setting. The default, when present, is validated and its
// coerced form is stored so resolution can use it verbatim.
func (r *Registry) Register(s *Setting) error {
	if err := checkDeclaration(s); err != nil {
		return err
	}
	if _, exists := r.byName[s.Name]; exists {
		return &DuplicateSettingError{Name: s.Name}
	}
	registered := *s
	registered.Flags = s.CLIFlags()
	if s.HasDefault() {
		v, err := s.Type.Validate(s.Default)
		if err != nil {
			return &InvalidDefaultError{Name: s.Name, Value: s.Default, Cause: err}
		}
		registered.Default = v
	}
	if err := r.claimFlags(&registered); err != nil {
		return err
	}
	r.settings = append(r.settings, &registered)
	r.byName[registered.Name] = &registered
	return nil
}

// MustRegister is Register for static schemas; it panics on error.
func (r *Registry) MustRegister(s *Setting) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

func (r *Registry) claimFlags(s *Setting) error {
	seen := make(map[string]bool, len(s.Flags))
	for _, flag := range s.Flags {
		if seen[flag] {
			return &DuplicateFlagError{Flag: flag, Setting: s.Name, Existing: s.Name}
		}
		seen[flag] = true
		if owner, taken := r.flags[flag]; taken {
			return &DuplicateFlagError{Flag: flag, Setting: s.Name, Existing: owner}
		}
	}
	if s.Positional {
		if owner, ok := r.Positional(); ok {
			return &DuplicateFlagError{Flag: "positional arguments", Setting: s.Name, Existing: owner.Name}
		}
	}
	for _, flag := range s.Flags {
		r.flags[flag] = s.Name
	}
	return nil
}

func checkDeclaration(s *Setting) error {
	if s == nil {
		return &InvalidSettingError{Reason: "nil setting"}
	}
	if strings.TrimSpace(s.Name) == "" {
		return &InvalidSettingError{Name: s.Name, Reason: "empty name"}
	}
	if s.Type == nil {
		return &InvalidSettingError{Name: s.Name, Reason: "no value type"}
	}
	if s.Merge == MergeAppend && s.Type.Kind() != KindList {
		return &InvalidSettingError{Name: s.Name, Reason: "append merge policy requires a list type"}
	}
	if s.Positional {
		if k := s.Type.Kind(); k != KindList && k != KindString {
			return &InvalidSettingError{Name: s.Name, Reason: "positional settings must be string or list typed"}
		}
	}
	shorts := 0
	for _, flag := range s.Flags {
		switch {
		case strings.HasPrefix(flag, "--") && len(flag) > 2:
		case strings.HasPrefix(flag, "-") && len(flag) == 2 && flag[1] != '-':
			shorts++
		default:
			return &InvalidSettingError{Name: s.Name, Reason: fmt.Sprintf("malformed flag %q", flag)}
		}
	}
	if shorts > 1 {
		return &InvalidSettingError{Name: s.Name, Reason: "at most one short flag is allowed"}
	}
	if shorts == 1 && len(s.Flags) == 1 {
		return &InvalidSettingError{Name: s.Name, Reason: "a short flag needs a long flag alongside it"}
	}
	return nil
}

// All returns the settings in registration order.
func (r *Registry) All() []*Setting {
	return slices.Clone(r.settings)
}

// Names returns the setting names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.settings))
	for i, s := range r.settings {
		names[i] = s.Name
	}
	return names
}

// Len returns the number of registered settings.
func (r *Registry) Len() int {
	return len(r.settings)
}

// Lookup returns the named setting.
func (r *Registry) Lookup(name string) (*Setting, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Positional returns the setting bound to positional arguments, if any.
func (r *Registry) Positional() (*Setting, bool) {
	for _, s := range r.settings {
		if s.Positional {
			return s, true
		}
	}
	return nil, false
}

// FlagMapping returns a map of CLI flag aliases to setting names.
func (r *Registry) FlagMapping() map[string]string {
	mapping := make(map[string]string, len(r.flags))
	for flag, name := range r.flags {
		mapping[flag] = name
	}
	return mapping
}
