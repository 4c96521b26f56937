package cli

import (
	"fmt"
	"strings"

	"github.com/prospector-dev/prospector/cli/helpers"
	"github.com/prospector-dev/prospector/pkg/config"
	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/spf13/cobra"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect prospector configuration",
	}
	cmd.AddCommand(a.configShowCmd(), a.configSettingsCmd())
	return cmd
}

func (a *app) configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [flags] [PATH...]",
		Short: "Show the resolved configuration",
		Long: `Resolve the configuration exactly as an analysis run would and print it.
With --sources every setting is listed with the source that supplied it.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}
			withSources, err := cmd.Flags().GetBool("sources")
			if err != nil {
				return fmt.Errorf("failed to get sources flag: %w", err)
			}
			resolved, err := a.resolve(cmd, args)
			if err != nil {
				return err
			}
			view := resolvedView{resolved: resolved, sources: withSources}
			return helpers.NewOutputWriter(cmd.OutOrStdout(), format).WriteData(view.output(format))
		},
	}
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json, yaml)")
	cmd.Flags().Bool("sources", false, "Show the source and origin of every value")
	return cmd
}

func (a *app) configSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "List the recognized settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}
			view := newSettingsView(a.registry)
			var data any = view
			if format != helpers.OutputFormatTable {
				data = view.entries
			}
			return helpers.NewOutputWriter(cmd.OutOrStdout(), format).WriteData(data)
		},
	}
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json, yaml)")
	return cmd
}

func formatFlag(cmd *cobra.Command) (helpers.OutputFormat, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	return helpers.ParseOutputFormat(value)
}

// resolvedEntry is one setting of `config show --sources`.
type resolvedEntry struct {
	Name   string            `json:"name"             yaml:"name"`
	Value  any               `json:"value"            yaml:"value"`
	Source config.SourceType `json:"source"           yaml:"source"`
	Origin string            `json:"origin,omitempty" yaml:"origin,omitempty"`
}

type resolvedView struct {
	resolved *config.Resolved
	sources  bool
}

func (v resolvedView) output(format helpers.OutputFormat) any {
	switch {
	case format == helpers.OutputFormatTable:
		return v
	case v.sources:
		return v.entries()
	default:
		return v.resolved.Map()
	}
}

func (v resolvedView) entries() []resolvedEntry {
	names := v.resolved.Names()
	entries := make([]resolvedEntry, 0, len(names))
	for _, name := range names {
		value, _ := v.resolved.Get(name)
		if definition.IsUnset(value) {
			value = nil
		}
		p := v.resolved.Provenance(name)
		entries = append(entries, resolvedEntry{
			Name:   name,
			Value:  value,
			Source: p.Type,
			Origin: origins(v.resolved, name),
		})
	}
	return entries
}

// origins joins the origins of every contributing source.
func origins(r *config.Resolved, name string) string {
	var out []string
	for _, p := range r.Contributions(name) {
		if p.Origin != "" {
			out = append(out, p.Origin)
		}
	}
	return strings.Join(out, ", ")
}

func (v resolvedView) Headers() []string {
	if v.sources {
		return []string{"Setting", "Value", "Source", "Origin"}
	}
	return []string{"Setting", "Value"}
}

func (v resolvedView) Rows() [][]string {
	entries := v.entries()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		value := helpers.FormatValue(e.Value)
		if e.Value == nil {
			value = helpers.FormatValue(definition.Unset)
		}
		row := []string{e.Name, value}
		if v.sources {
			row = append(row, string(e.Source), e.Origin)
		}
		rows = append(rows, row)
	}
	return rows
}

// settingEntry is one row of `config settings`.
type settingEntry struct {
	Name    string   `json:"name"              yaml:"name"`
	Type    string   `json:"type"              yaml:"type"`
	Default any      `json:"default,omitempty" yaml:"default,omitempty"`
	Merge   string   `json:"merge"             yaml:"merge"`
	Flags   []string `json:"flags,omitempty"   yaml:"flags,omitempty"`
	EnvVar  string   `json:"env_var"           yaml:"env_var"`
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	Help    string   `json:"help,omitempty"    yaml:"help,omitempty"`
}

type settingsView struct {
	entries []settingEntry
}

func newSettingsView(registry *definition.Registry) settingsView {
	all := registry.All()
	entries := make([]settingEntry, 0, len(all))
	for _, s := range all {
		flags := s.Flags
		if s.Positional {
			flags = []string{strings.ToUpper(s.Metavar) + "..."}
		}
		entries = append(entries, settingEntry{
			Name:    s.Name,
			Type:    s.Type.Describe(),
			Default: s.Default,
			Merge:   s.Merge.String(),
			Flags:   flags,
			EnvVar:  s.EnvVar(config.EnvPrefix),
			Choices: s.Choices(),
			Help:    s.Help,
		})
	}
	return settingsView{entries: entries}
}

func (v settingsView) Headers() []string {
	return []string{"Setting", "Type", "Default", "Merge", "Flags", "Environment"}
}

func (v settingsView) Rows() [][]string {
	rows := make([][]string, 0, len(v.entries))
	for _, e := range v.entries {
		rows = append(rows, []string{
			e.Name,
			e.Type,
			helpers.FormatValue(e.Default),
			e.Merge,
			strings.Join(e.Flags, ", "),
			e.EnvVar,
		})
	}
	return rows
}
