package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/spf13/pflag"
)

// reservedFlags are owned by the command itself and may not be claimed by
// settings.
var reservedFlags = map[string]bool{"help": true, "version": true}

// occurrence is one appearance of a flag on the command line.
type occurrence struct {
	token string
	value string
}

// settingFlags collects the occurrences of every alias of one setting.
type settingFlags struct {
	setting     *definition.Setting
	occurrences []occurrence
}

// aliasValue is the pflag.Value registered for one alias.
type aliasValue struct {
	shared *settingFlags
	token  string
	kind   string
}

func (v *aliasValue) String() string {
	n := len(v.shared.occurrences)
	if n == 0 {
		return ""
	}
	if v.shared.setting.Type.Kind() == definition.KindList {
		values := make([]string, n)
		for i, o := range v.shared.occurrences {
			values[i] = o.value
		}
		return "[" + strings.Join(values, ",") + "]"
	}
	return v.shared.occurrences[n-1].value
}

func (v *aliasValue) Set(value string) error {
	v.shared.occurrences = append(v.shared.occurrences, occurrence{token: v.token, value: value})
	return nil
}

func (v *aliasValue) Type() string {
	return v.kind
}

// FlagBinding ties the flags registered on a flag set to their settings.
type FlagBinding struct {
	registry *definition.Registry
	flags    []*settingFlags
}

// BindFlags registers one flag per setting alias on fs. The first long alias
// is the primary flag and carries the short alias; further long aliases are
// hidden flags feeding the same setting. Claiming a flag fs already defines
// fails with a DuplicateFlagError.
func BindFlags(fs *pflag.FlagSet, registry *definition.Registry) (*FlagBinding, error) {
	binding := &FlagBinding{registry: registry}
	for _, s := range registry.All() {
		if s.Positional || len(s.Flags) == 0 {
			continue
		}
		shared := &settingFlags{setting: s}
		if err := bindSetting(fs, shared); err != nil {
			return nil, err
		}
		binding.flags = append(binding.flags, shared)
	}
	return binding, nil
}

func bindSetting(fs *pflag.FlagSet, shared *settingFlags) error {
	s := shared.setting
	var short string
	var longs []string
	for _, alias := range s.Flags {
		if strings.HasPrefix(alias, "--") {
			longs = append(longs, strings.TrimPrefix(alias, "--"))
		} else {
			short = strings.TrimPrefix(alias, "-")
		}
	}
	if short != "" && fs.ShorthandLookup(short) != nil {
		return &definition.DuplicateFlagError{Flag: "-" + short, Setting: s.Name}
	}
	for _, long := range longs {
		if reservedFlags[long] || fs.Lookup(long) != nil {
			return &definition.DuplicateFlagError{Flag: "--" + long, Setting: s.Name}
		}
	}
	for i, long := range longs {
		value := &aliasValue{shared: shared, token: "--" + long, kind: flagKind(s)}
		shorthand := ""
		if i == 0 {
			shorthand = short
		}
		flag := fs.VarPF(value, long, shorthand, flagUsage(s))
		flag.DefValue = flagDefault(s)
		if s.Type.Kind() == definition.KindBoolean {
			flag.NoOptDefVal = "true"
		}
		if i > 0 {
			flag.Hidden = true
		}
	}
	return nil
}

func flagKind(s *definition.Setting) string {
	if s.Type.Kind() == definition.KindBoolean {
		return "bool"
	}
	if s.Metavar != "" {
		return strings.ToLower(s.Metavar)
	}
	switch s.Type.Kind() {
	case definition.KindInteger:
		return "int"
	case definition.KindList:
		return "strings"
	default:
		return "string"
	}
}

func flagUsage(s *definition.Setting) string {
	usage := strings.TrimSpace(s.Help)
	if choices := s.Choices(); len(choices) > 0 && !strings.Contains(usage, strings.Join(choices, ", ")) {
		if usage != "" && !strings.HasSuffix(usage, ".") {
			usage += "."
		}
		usage = strings.TrimSpace(usage + " Possible values: " + strings.Join(choices, ", ") + ".")
	}
	if s.Type.Kind() == definition.KindList {
		usage += " May be repeated."
	}
	return usage
}

func flagDefault(s *definition.Setting) string {
	if s.Type.Kind() == definition.KindBoolean || !s.HasDefault() {
		return ""
	}
	if values, ok := s.Default.([]string); ok {
		if len(values) == 0 {
			return ""
		}
		return "[" + strings.Join(values, ",") + "]"
	}
	return fmt.Sprintf("%v", s.Default)
}

// Source builds a CommandLineSource from the parsed flags and the remaining
// positional arguments.
func (b *FlagBinding) Source(positional []string, opts ...Option) (*CommandLineSource, error) {
	o := newOptions(RankCommandLine, opts)
	src := &CommandLineSource{
		name:   o.nameOr("command line"),
		rank:   o.rank,
		values: make(map[string]RawValue),
	}
	for _, sf := range b.flags {
		if len(sf.occurrences) == 0 {
			continue
		}
		raw, err := flagValue(sf)
		if err != nil {
			return nil, err
		}
		src.values[sf.setting.Name] = raw
	}
	if err := b.bindPositional(src, positional); err != nil {
		return nil, err
	}
	return src, nil
}

func flagValue(sf *settingFlags) (RawValue, error) {
	s := sf.setting
	if s.Type.Kind() == definition.KindList {
		return listFlagValue(sf)
	}
	// Every occurrence must be valid; the last one wins.
	var value any
	for _, o := range sf.occurrences {
		v, err := s.Validate(o.value, o.token)
		if err != nil {
			return RawValue{}, flagParseError(o, err)
		}
		value = v
	}
	last := sf.occurrences[len(sf.occurrences)-1]
	if s.Type.Kind() == definition.KindBoolean {
		def, _ := s.Default.(bool)
		present := value.(bool)
		value = def
		if present {
			value = !def
		}
	}
	return RawValue{Value: value, Origin: last.token}, nil
}

func listFlagValue(sf *settingFlags) (RawValue, error) {
	s := sf.setting
	elem := definition.ElemOf(s.Type)
	raws := make([]string, 0, len(sf.occurrences))
	for _, o := range sf.occurrences {
		if _, err := elem.Validate(o.value); err != nil {
			return RawValue{}, flagParseError(o, definition.Attribute(err, s.Name, o.token))
		}
		raws = append(raws, o.value)
	}
	value, err := s.Validate(raws, sf.occurrences[0].token)
	if err != nil {
		return RawValue{}, flagParseError(sf.occurrences[0], err)
	}
	return RawValue{Value: value, Origin: sf.occurrences[0].token}, nil
}

func (b *FlagBinding) bindPositional(src *CommandLineSource, args []string) error {
	s, ok := b.registry.Positional()
	if !ok {
		if len(args) > 0 {
			return &definition.CommandLineParseError{
				Token: args[0],
				Cause: errors.New("unexpected positional argument"),
			}
		}
		return nil
	}
	if len(args) == 0 {
		return nil
	}
	origin := "positional " + strings.ToUpper(s.Metavar)
	if s.Metavar == "" {
		origin = "positional arguments"
	}
	if s.Type.Kind() != definition.KindList {
		if len(args) > 1 {
			return &definition.CommandLineParseError{
				Token: args[1],
				Cause: errors.New("unexpected positional argument"),
			}
		}
		value, err := s.Validate(args[0], origin)
		if err != nil {
			return &definition.CommandLineParseError{Token: args[0], Cause: err}
		}
		src.values[s.Name] = RawValue{Value: value, Origin: origin}
		return nil
	}
	value, err := s.Validate(append([]string(nil), args...), origin)
	if err != nil {
		return &definition.CommandLineParseError{Token: strings.Join(args, " "), Cause: err}
	}
	src.values[s.Name] = RawValue{Value: value, Origin: origin}
	return nil
}

func flagParseError(o occurrence, err error) error {
	return &definition.CommandLineParseError{Token: o.token + "=" + o.value, Cause: err}
}

// WrapFlagError converts a flag parsing failure into a CommandLineParseError
// carrying the offending token.
func WrapFlagError(err error) error {
	if err == nil {
		return nil
	}
	var parseErr *definition.CommandLineParseError
	if errors.As(err, &parseErr) {
		return err
	}
	if errors.Is(err, pflag.ErrHelp) {
		return &definition.CommandLineParseError{Cause: err}
	}
	token := ""
	if fields := strings.Fields(err.Error()); len(fields) > 0 {
		token = strings.Trim(fields[len(fields)-1], "'\"")
	}
	return &definition.CommandLineParseError{Token: token, Cause: err}
}

// CommandLineSource serves values parsed from process arguments.
type CommandLineSource struct {
	name   string
	rank   int
	values map[string]RawValue
}

// NewCommandLineSource parses args once against the registry's flags.
func NewCommandLineSource(
	registry *definition.Registry,
	args []string,
	opts ...Option,
) (*CommandLineSource, error) {
	fs := pflag.NewFlagSet("prospector", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	binding, err := BindFlags(fs, registry)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, WrapFlagError(err)
	}
	return binding.Source(fs.Args(), opts...)
}

// Type returns the source type identifier.
func (c *CommandLineSource) Type() SourceType { return SourceCLI }

// Name describes the source.
func (c *CommandLineSource) Name() string { return c.name }

// Rank returns the precedence rank.
func (c *CommandLineSource) Rank() int { return c.rank }

// Lookup returns the value supplied on the command line.
func (c *CommandLineSource) Lookup(name string) (RawValue, bool) {
	v, ok := c.values[name]
	return v, ok
}
