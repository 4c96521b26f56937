package config

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/prospector-dev/prospector/pkg/logger"
)

// Manager resolves every registered setting against an ordered list of
// sources. The registry is never mutated.
type Manager struct {
	registry *definition.Registry
	sources  []Source
}

// NewManager creates a manager over sources ordered by ascending rank. Sources
// sharing a rank keep the order they were given in. Nil sources are ignored.
func NewManager(registry *definition.Registry, sources ...Source) *Manager {
	ordered := make([]Source, 0, len(sources))
	for _, src := range sources {
		if src != nil && !isNilSource(src) {
			ordered = append(ordered, src)
		}
	}
	slices.SortStableFunc(ordered, func(a, b Source) int {
		return cmp.Compare(a.Rank(), b.Rank())
	})
	return &Manager{registry: registry, sources: ordered}
}

// isNilSource catches typed nil pointers stored in the interface.
func isNilSource(src Source) bool {
	switch s := src.(type) {
	case *CommandLineSource:
		return s == nil
	case *EnvironmentVariableSource:
		return s == nil
	case *ConfigFileSource:
		return s == nil
	}
	return false
}

// Registry returns the registry the manager resolves.
func (m *Manager) Registry() *definition.Registry {
	return m.registry
}

// Sources returns a copy of the sources in precedence order.
func (m *Manager) Sources() []Source {
	return slices.Clone(m.sources)
}

// Resolve collects, validates and freezes one value per setting. The first
// invalid value aborts resolution; lower-precedence sources are never used as
// a fallback.
func (m *Manager) Resolve(ctx context.Context) (*Resolved, error) {
	log := logger.FromContext(ctx)
	resolved := &Resolved{
		names:   m.registry.Names(),
		values:  make(map[string]any, m.registry.Len()),
		origins: make(map[string][]Provenance, m.registry.Len()),
	}
	for _, s := range m.registry.All() {
		value, origins, err := m.resolveSetting(s)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", s.Name, err)
		}
		resolved.values[s.Name] = value
		resolved.origins[s.Name] = origins
		log.Debug("Resolved setting", "setting", s.Name, "source", origins[0].Source, "origin", origins[0].Origin)
	}
	return resolved, nil
}

func (m *Manager) resolveSetting(s *definition.Setting) (any, []Provenance, error) {
	if s.Merge == definition.MergeAppend {
		return m.appendSetting(s)
	}
	for _, src := range m.sources {
		raw, ok := src.Lookup(s.Name)
		if !ok {
			continue
		}
		value, err := s.Validate(raw.Value, raw.Origin)
		if err != nil {
			return nil, nil, err
		}
		return value, []Provenance{provenanceOf(src, raw)}, nil
	}
	return fallbackValue(s)
}

func (m *Manager) appendSetting(s *definition.Setting) (any, []Provenance, error) {
	var items []any
	var origins []Provenance
	for _, src := range m.sources {
		raw, ok := src.Lookup(s.Name)
		if !ok {
			continue
		}
		value, err := s.Validate(raw.Value, raw.Origin)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, spread(value)...)
		origins = append(origins, provenanceOf(src, raw))
	}
	if len(origins) == 0 {
		return fallbackValue(s)
	}
	// Elements are already coerced; validating again only rebuilds the typed slice.
	value, err := s.Validate(items, origins[0].Origin)
	if err != nil {
		return nil, nil, err
	}
	return value, origins, nil
}

func fallbackValue(s *definition.Setting) (any, []Provenance, error) {
	if s.HasDefault() {
		return s.Default, []Provenance{{Type: SourceDefault, Source: string(SourceDefault)}}, nil
	}
	return definition.Unset, []Provenance{{Type: SourceUnset, Source: string(SourceUnset)}}, nil
}

func provenanceOf(src Source, raw RawValue) Provenance {
	return Provenance{Type: src.Type(), Source: src.Name(), Origin: raw.Origin}
}

func spread(v any) []any {
	switch list := v.(type) {
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(list))
		for i, n := range list {
			out[i] = n
		}
		return out
	case []bool:
		out := make([]any, len(list))
		for i, b := range list {
			out[i] = b
		}
		return out
	case []any:
		return list
	}
	return []any{v}
}
