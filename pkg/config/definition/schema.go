package definition

import (
	"fmt"
	"slices"
	"strings"
)

// Catalog lists the identifiers contributed by the analysis tools,
// output formatters and library adaptors. Choice settings draw their legal
// values from it.
type Catalog struct {
	Tools        []string
	DefaultTools []string
	Formatters   []string
	Adaptors     []string
}

// DefaultCatalog returns the identifiers shipped with prospector.
func DefaultCatalog() Catalog {
	return Catalog{
		Tools: []string{
			"dodgy", "frosted", "mccabe", "pep257", "pep8",
			"profile-validator", "pyflakes", "pylint", "pyroma", "vulture",
		},
		DefaultTools: []string{"dodgy", "mccabe", "pep8", "profile-validator", "pyflakes", "pylint"},
		Formatters:   []string{"emacs", "grouped", "json", "pylint", "text", "xunit", "yaml"},
		Adaptors:     []string{"celery", "django", "flask"},
	}
}

func (c Catalog) sorted() Catalog {
	return Catalog{
		Tools:        sortedCopy(c.Tools),
		DefaultTools: sortedCopy(c.DefaultTools),
		Formatters:   sortedCopy(c.Formatters),
		Adaptors:     sortedCopy(c.Adaptors),
	}
}

func sortedCopy(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}

// Strictness levels, strictest first.
var StrictnessLevels = []string{"veryhigh", "high", "medium", "low", "verylow"}

// ExternalConfigModes controls how existing tool configuration is treated.
var ExternalConfigModes = []string{"none", "merge", "only"}

// CreateRegistry creates and populates the prospector settings registry.
// Registration order is the order settings appear in help and listings.
func CreateRegistry(catalog Catalog) *Registry {
	c := catalog.sorted()
	registry := NewRegistry()
	registerBehaviourSettings(registry, c)
	registerWarningSettings(registry)
	registerOutputSettings(registry, c)
	registerToolSettings(registry, c)
	registerProfileSettings(registry)
	registerPathSettings(registry)
	return registry
}

func registerBehaviourSettings(registry *Registry, c Catalog) {
	registry.MustRegister(&Setting{
		Name:    "zero_exit",
		Type:    Boolean(),
		Default: false,
		Flags:   []string{"-0", "--zero-exit"},
		Help: "Prospector will exit with a code of 1 (one) if any messages are found. " +
			"This makes automation easier; if there are any problems at all, the exit code is non-zero. " +
			"However this behaviour is not always desirable, so if this flag is set, prospector will " +
			"exit with a code of 0 if it ran successfully, and non-zero if it failed to run.",
	})
	registry.MustRegister(&Setting{
		Name:    "autodetect",
		Type:    Boolean(),
		Default: true,
		Flags:   []string{"-A", "--no-autodetect"},
		Help: "Turn off auto-detection of frameworks and libraries used. By default, autodetection " +
			"will be used. To specify manually, see the --uses option.",
	})
	registry.MustRegister(&Setting{
		Name:    "uses",
		Type:    ListOfChoice(c.Adaptors...),
		Default: []string{},
		Flags:   []string{"-u", "--uses"},
		Help: fmt.Sprintf("A list of one or more libraries or frameworks that the project uses. "+
			"Possible values are: %s. This will be autodetected by default, but if autodetection "+
			"doesn't work, manually specify them using this flag.", strings.Join(c.Adaptors, ", ")),
	})
	registry.MustRegister(&Setting{
		Name:    "blending",
		Type:    Boolean(),
		Default: true,
		Flags:   []string{"-B", "--no-blending"},
		Help: "Turn off blending of messages. Prospector will merge together messages from different " +
			"tools if they represent the same error. Use this option to see all unmerged messages.",
	})
	registry.MustRegister(&Setting{
		Name:    "common_plugin",
		Type:    Boolean(),
		Default: true,
		Flags:   []string{"--no-common-plugin"},
		Help:    "Do not load the common pylint plugin.",
	})
	registry.MustRegister(&Setting{
		Name:    "die_on_tool_error",
		Type:    Boolean(),
		Default: false,
		Flags:   []string{"-X", "--die-on-tool-error"},
		Help: "If a tool fails to run, prospector will try to carry on. Use this flag to cause " +
			"prospector to die and raise the exception the tool generated. Mostly useful for " +
			"development on prospector.",
	})
}

func registerWarningSettings(registry *Registry) {
	registry.MustRegister(&Setting{
		Name:    "doc_warnings",
		Type:    Boolean(),
		Default: false,
		Flags:   []string{"-D", "--doc-warnings"},
		Help:    "Include warnings about documentation.",
	})
	registry.MustRegister(&Setting{
		Name:    "test_warnings",
		Type:    Boolean(),
		Default: false,
		Flags:   []string{"-T", "--test-warnings"},
		Help:    "Also check test modules and packages.",
	})
	registry.MustRegister(&Setting{
		Name:    "style_warnings",
		Type:    Boolean(),
		Default: true,
		Flags:   []string{"-8", "--no-style-warnings"},
		Help: "Don't create any warnings about style. This disables the PEP8 tool and similar " +
			"checks for formatting.",
	})
	registry.MustRegister(&Setting{
		Name:    "full_pep8",
		Type:    Boolean(),
		Default: false,
		Flags:   []string{"-F", "--full-pep8"},
		Help:    "Enables every PEP8 warning, so that all PEP8 style violations will be reported.",
	})
	registry.MustRegister(&Setting{
		Name:    "max_line_length",
		Type:    Integer(),
		Flags:   []string{"--max-line-length"},
		Metavar: "N",
		Help: "The maximum line length allowed. This will be set by the strictness if no value " +
			"is explicitly specified.",
	})
	registry.MustRegister(&Setting{
		Name:    "strictness",
		Type:    Choice(StrictnessLevels...),
		Default: "medium",
		Flags:   []string{"-s", "--strictness"},
		Help: "How strict the checker should be. This affects how harshly the checker will " +
			"enforce coding guidelines.",
	})
	registry.MustRegister(&Setting{
		Name:    "external_config",
		Type:    Choice(ExternalConfigModes...),
		Default: "only",
		Flags:   []string{"-e", "--external-config"},
		Help: "Determines how prospector should behave when configuration already exists for a " +
			"tool. By default, prospector will use existing configuration. A value of \"merge\" " +
			"will cause prospector to merge existing config and its own config, and \"none\" " +
			"means that prospector will use only its own config.",
	})
}

func registerOutputSettings(registry *Registry, c Catalog) {
	registry.MustRegister(&Setting{
		Name:    "messages_only",
		Type:    Boolean(),
		Default: false,
		Flags:   []string{"-M", "--messages-only"},
		Help:    "Only output message information (don't output summary information about the checks).",
	})
	registry.MustRegister(&Setting{
		Name:    "summary_only",
		Type:    Boolean(),
		Default: false,
		Flags:   []string{"-S", "--summary-only"},
		Help:    "Only output summary information about the checks (don't output message information).",
	})
	registry.MustRegister(&Setting{
		Name:    "output_format",
		Type:    Choice(c.Formatters...),
		Flags:   []string{"-o", "--output-format"},
		Metavar: "FORMAT",
		Help:    "The output format.",
	})
	registry.MustRegister(&Setting{
		Name:    "absolute_paths",
		Type:    Boolean(),
		Default: false,
		Help: "Whether to output absolute paths when referencing files in messages. By default, " +
			"paths will be relative to the project path.",
	})
}

func registerToolSettings(registry *Registry, c Catalog) {
	registry.MustRegister(&Setting{
		Name:    "tools",
		Type:    ListOfChoice(c.Tools...),
		Flags:   []string{"-t", "--tool"},
		Metavar: "TOOL",
		Help: fmt.Sprintf("A list of tools to run. This lets you set exactly which tools to run. "+
			"To add extra tools to the defaults, see --with-tool. By default, the following tools "+
			"will be run: %s.", strings.Join(c.DefaultTools, ", ")),
	})
	registry.MustRegister(&Setting{
		Name:    "with_tools",
		Type:    List(String()),
		Default: []string{},
		Flags:   []string{"-w", "--with-tool"},
		Metavar: "TOOL",
		Help: fmt.Sprintf("A list of tools to run in addition to the default tools. To specify "+
			"all tools explicitly, use the --tool argument. Possible values are %s.",
			strings.Join(c.Tools, ", ")),
	})
	registry.MustRegister(&Setting{
		Name:    "without_tools",
		Type:    List(String()),
		Default: []string{},
		Flags:   []string{"-W", "--without-tool"},
		Metavar: "TOOL",
		Help: fmt.Sprintf("A list of tools that should not be run. Useful to turn off only a "+
			"single tool from the defaults. To specify all tools explicitly, use the --tool "+
			"argument. Possible values are %s.", strings.Join(c.Tools, ", ")),
	})
}

func registerProfileSettings(registry *Registry) {
	registry.MustRegister(&Setting{
		Name:    "profiles",
		Type:    List(String()),
		Default: []string{},
		Flags:   []string{"-P", "--profile"},
		Metavar: "PROFILE",
		Help: "The list of profiles to load. A profile is a certain 'type' of behaviour for " +
			"prospector, and is represented by a YAML configuration file. Either a full path to " +
			"the YAML file describing the profile must be provided, or it must be on the profile " +
			"path (see --profile-path).",
	})
	registry.MustRegister(&Setting{
		Name:    "profile_path",
		Type:    List(String()),
		Default: []string{},
		Merge:   MergeAppend,
		Flags:   []string{"--profile-path"},
		Metavar: "DIR",
		Help: "Additional paths to search for profile files. By default this is the path that " +
			"prospector will check, and a directory called \".prospector\" in the path that " +
			"prospector will check.",
	})
}

func registerPathSettings(registry *Registry) {
	registry.MustRegister(&Setting{
		Name:    "ignore_patterns",
		Type:    List(String()),
		Default: []string{},
		Merge:   MergeAppend,
		Flags:   []string{"-I", "--ignore-patterns"},
		Metavar: "PATTERN",
		Help: "A list of paths to ignore, as a list of regular expressions. Files and folders " +
			"will be ignored if their full path contains any of these patterns.",
	})
	registry.MustRegister(&Setting{
		Name:    "ignore_paths",
		Type:    List(String()),
		Default: []string{},
		Merge:   MergeAppend,
		Flags:   []string{"-i", "--ignore-paths"},
		Metavar: "PATH",
		Help: "A list of file or directory names to ignore. If the complete name matches any of " +
			"the items in this list, the file or directory (and all subdirectories) will be ignored.",
	})
	registry.MustRegister(&Setting{
		Name:    "path",
		Type:    String(),
		Flags:   []string{"-p", "--path"},
		Metavar: "PATH",
		Help: "The path to a Python project to inspect. Defaults to PWD if not specified. " +
			"Deprecated: use the positional PATH argument instead.",
	})
	registry.MustRegister(&Setting{
		Name:       "checkpath",
		Type:       List(String()),
		Default:    []string{},
		Positional: true,
		Metavar:    "PATH",
		Help:       "The path to a Python project to inspect. Defaults to PWD if not specified.",
	})
}
