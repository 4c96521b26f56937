package config

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/v2"
	"github.com/prospector-dev/prospector/pkg/config/definition"
)

// Provenance records where a resolved value came from.
type Provenance struct {
	Type   SourceType `json:"type"             yaml:"type"`
	Source string     `json:"source"           yaml:"source"`
	Origin string     `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// Resolved is the frozen result of one resolution pass. It holds a value for
// every registered setting; settings without a value hold definition.Unset.
type Resolved struct {
	names   []string
	values  map[string]any
	origins map[string][]Provenance
}

// Names returns the setting names in registration order.
func (r *Resolved) Names() []string {
	return slices.Clone(r.names)
}

// Get returns the value of a setting. The boolean is false for names that
// were never registered.
func (r *Resolved) Get(name string) (any, bool) {
	v, ok := r.values[name]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// IsSet reports whether the setting resolved to something other than Unset.
func (r *Resolved) IsSet(name string) bool {
	v, ok := r.values[name]
	return ok && !definition.IsUnset(v)
}

// Bool returns a boolean setting, or false when unset.
func (r *Resolved) Bool(name string) bool {
	b, _ := r.values[name].(bool)
	return b
}

// String returns a string or choice setting, or "" when unset.
func (r *Resolved) String(name string) string {
	s, _ := r.values[name].(string)
	return s
}

// Int returns an integer setting and whether it is set.
func (r *Resolved) Int(name string) (int, bool) {
	n, ok := r.values[name].(int)
	return n, ok
}

// Strings returns a copy of a string list setting, or nil when unset.
func (r *Resolved) Strings(name string) []string {
	list, ok := r.values[name].([]string)
	if !ok {
		return nil
	}
	return slices.Clone(list)
}

// Provenance returns the highest-precedence origin of a setting.
func (r *Resolved) Provenance(name string) Provenance {
	origins := r.origins[name]
	if len(origins) == 0 {
		return Provenance{}
	}
	return origins[0]
}

// Contributions returns every origin that supplied a value, in precedence
// order. Only append settings have more than one.
func (r *Resolved) Contributions(name string) []Provenance {
	return slices.Clone(r.origins[name])
}

// Map returns a copy of every set value keyed by setting name.
func (r *Resolved) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for name, v := range r.values {
		if definition.IsUnset(v) {
			continue
		}
		out[name] = copyValue(v)
	}
	return out
}

// Equal reports whether both results hold the same values. Provenance is not
// compared.
func (r *Resolved) Equal(other *Resolved) bool {
	if r == nil || other == nil {
		return r == other
	}
	if !slices.Equal(r.names, other.names) {
		return false
	}
	return maps.EqualFunc(r.values, other.values, func(a, b any) bool {
		return reflect.DeepEqual(a, b)
	})
}

// Decode copies the set values into out, a pointer to a struct whose fields
// carry koanf tags named after settings.
func (r *Resolved) Decode(out any) error {
	k := koanf.New(".")
	if err := k.Load(rawMap(r.Map()), nil); err != nil {
		return fmt.Errorf("failed to load resolved configuration: %w", err)
	}
	if err := k.UnmarshalWithConf("", out, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:     out,
			TagName:    "koanf",
			ZeroFields: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}); err != nil {
		return fmt.Errorf("failed to decode resolved configuration: %w", err)
	}
	return nil
}

func copyValue(v any) any {
	switch list := v.(type) {
	case []string:
		return slices.Clone(list)
	case []int:
		return slices.Clone(list)
	case []bool:
		return slices.Clone(list)
	case []any:
		return slices.Clone(list)
	}
	return v
}
