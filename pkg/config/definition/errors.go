package definition

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for each failure category. Every concrete error type below
// reports itself as its category through Is, so callers can use errors.Is.
var (
	ErrDuplicateSetting = errors.New("duplicate setting")
	ErrInvalidDefault   = errors.New("invalid default")
	ErrDuplicateFlag    = errors.New("duplicate flag")
	ErrInvalidSetting   = errors.New("invalid setting declaration")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrInvalidChoice    = errors.New("invalid choice")
	ErrConfigFileParse  = errors.New("config file parse error")
	ErrCommandLineParse = errors.New("command line parse error")
)

// DuplicateSettingError is returned when a name is registered twice.
type DuplicateSettingError struct {
	Name string
}

func (e *DuplicateSettingError) Error() string {
	return fmt.Sprintf("setting %q is already registered", e.Name)
}

func (e *DuplicateSettingError) Is(target error) bool {
	return target == ErrDuplicateSetting
}

// InvalidDefaultError is returned when a default does not pass the setting's
// own validator.
type InvalidDefaultError struct {
	Name  string
	Value any
	Cause error
}

func (e *InvalidDefaultError) Error() string {
	return fmt.Sprintf("invalid default %v for setting %q: %v", e.Value, e.Name, e.Cause)
}

func (e *InvalidDefaultError) Is(target error) bool {
	return target == ErrInvalidDefault
}

func (e *InvalidDefaultError) Unwrap() error {
	return e.Cause
}

// DuplicateFlagError is returned when two settings claim the same flag alias.
type DuplicateFlagError struct {
	Flag     string
	Setting  string
	Existing string
}

func (e *DuplicateFlagError) Error() string {
	if e.Existing == "" {
		return fmt.Sprintf("flag %s of setting %q is already defined", e.Flag, e.Setting)
	}
	return fmt.Sprintf("flag %s of setting %q is already used by %q", e.Flag, e.Setting, e.Existing)
}

func (e *DuplicateFlagError) Is(target error) bool {
	return target == ErrDuplicateFlag
}

// InvalidSettingError reports a malformed declaration.
type InvalidSettingError struct {
	Name   string
	Reason string
}

func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("invalid setting %q: %s", e.Name, e.Reason)
}

func (e *InvalidSettingError) Is(target error) bool {
	return target == ErrInvalidSetting
}

// TypeMismatchError is returned by validators when a raw value cannot be
// coerced to the declared type. Setting and Source are filled in as the
// error travels up through the registry and the resolver.
type TypeMismatchError struct {
	Setting  string
	Source   string
	Value    any
	Expected string
}

func (e *TypeMismatchError) Error() string {
	var b strings.Builder
	if e.Setting != "" {
		fmt.Fprintf(&b, "setting %q: ", e.Setting)
	}
	fmt.Fprintf(&b, "expected %s, got %s", e.Expected, formatRaw(e.Value))
	if e.Source != "" {
		fmt.Fprintf(&b, " (from %s)", e.Source)
	}
	return b.String()
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// InvalidChoiceError is returned when a value is not in the declared choice set.
type InvalidChoiceError struct {
	Setting string
	Source  string
	Value   string
	Choices []string
}

func (e *InvalidChoiceError) Error() string {
	var b strings.Builder
	if e.Setting != "" {
		fmt.Fprintf(&b, "setting %q: ", e.Setting)
	}
	fmt.Fprintf(&b, "invalid choice %q (choose from %s)", e.Value, strings.Join(e.Choices, ", "))
	if e.Source != "" {
		fmt.Fprintf(&b, " (from %s)", e.Source)
	}
	return b.String()
}

func (e *InvalidChoiceError) Is(target error) bool {
	return target == ErrInvalidChoice
}

// ConfigFileParseError reports a present but malformed config file. Line and
// Column are 1-based; zero means the position is unknown.
type ConfigFileParseError struct {
	Path   string
	Line   int
	Column int
	Cause  error
}

func (e *ConfigFileParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Cause)
	case e.Line > 0:
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Cause)
	default:
		return fmt.Sprintf("parse %s: %v", e.Path, e.Cause)
	}
}

func (e *ConfigFileParseError) Is(target error) bool {
	return target == ErrConfigFileParse
}

func (e *ConfigFileParseError) Unwrap() error {
	return e.Cause
}

// CommandLineParseError carries the offending command-line token.
type CommandLineParseError struct {
	Token string
	Cause error
}

func (e *CommandLineParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid command line: %v", e.Cause)
	}
	return fmt.Sprintf("invalid command line argument %s: %v", e.Token, e.Cause)
}

func (e *CommandLineParseError) Is(target error) bool {
	return target == ErrCommandLineParse
}

func (e *CommandLineParseError) Unwrap() error {
	return e.Cause
}

// Attribute stamps the setting name and source origin on validation errors
// produced by the value types. Other errors are returned untouched.
func Attribute(err error, setting, source string) error {
	var mismatch *TypeMismatchError
	if errors.As(err, &mismatch) {
		if mismatch.Setting == "" {
			mismatch.Setting = setting
		}
		if mismatch.Source == "" {
			mismatch.Source = source
		}
	}
	var choice *InvalidChoiceError
	if errors.As(err, &choice) {
		if choice.Setting == "" {
			choice.Setting = setting
		}
		if choice.Source == "" {
			choice.Source = source
		}
	}
	return err
}

func formatRaw(v any) string {
	switch val := v.(type) {
	case nil:
		return "nothing"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v (%T)", val, val)
	}
}
