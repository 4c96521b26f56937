package config

import (
	"context"
	"fmt"
	"testing"

	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var pathElement = rapid.StringMatching(`[a-z][a-z0-9_./-]{0,8}`)

func TestProperty_AppendConcatenatesInSourceOrder(t *testing.T) {
	registry := prospectorRegistry()
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 5).Draw(t, "sources")
		var sources []Source
		var expected []string
		for i := range count {
			values := rapid.SliceOfN(pathElement, 0, 4).Draw(t, fmt.Sprintf("values%d", i))
			sources = append(sources, NewStaticSource(
				fmt.Sprintf("src%d", i), SourceFile, i*10, map[string]any{"ignore_paths": values},
			))
			expected = append(expected, values...)
		}
		// Construction order must not matter, only ranks.
		shuffled := rapid.Permutation(sources).Draw(t, "order")

		resolved, err := NewManager(registry, shuffled...).Resolve(context.Background())
		require.NoError(t, err)

		got := resolved.Strings("ignore_paths")
		if len(expected) == 0 {
			require.Empty(t, got)
			return
		}
		require.Equal(t, expected, got)
	})
}

func TestProperty_OverrideTakesLowestRank(t *testing.T) {
	registry := prospectorRegistry()
	rapid.Check(t, func(t *rapid.T) {
		levels := rapid.SliceOfN(rapid.SampledFrom(definition.StrictnessLevels), 1, 5).Draw(t, "levels")
		ranks := rapid.SliceOfNDistinct(rapid.IntRange(-100, 100), len(levels), len(levels), rapid.ID[int]).
			Draw(t, "ranks")
		sources := make([]Source, len(levels))
		best := 0
		for i, level := range levels {
			sources[i] = NewStaticSource(fmt.Sprintf("src%d", i), SourceFile, ranks[i],
				map[string]any{"strictness": level})
			if ranks[i] < ranks[best] {
				best = i
			}
		}

		resolved, err := NewManager(registry, sources...).Resolve(context.Background())
		require.NoError(t, err)

		require.Equal(t, levels[best], resolved.String("strictness"))
		require.Equal(t, fmt.Sprintf("src%d", best), resolved.Provenance("strictness").Source)
	})
}

func TestProperty_ResolutionIsIdempotent(t *testing.T) {
	registry := prospectorRegistry()
	rapid.Check(t, func(t *rapid.T) {
		values := map[string]any{
			"zero_exit":       rapid.Bool().Draw(t, "zero_exit"),
			"max_line_length": rapid.IntRange(1, 400).Draw(t, "max_line_length"),
			"ignore_patterns": rapid.SliceOf(pathElement).Draw(t, "ignore_patterns"),
			"strictness":      rapid.SampledFrom(definition.StrictnessLevels).Draw(t, "strictness"),
		}
		manager := NewManager(registry, NewStaticSource("static", SourceEnv, 0, values))

		first, err := manager.Resolve(context.Background())
		require.NoError(t, err)
		second, err := manager.Resolve(context.Background())
		require.NoError(t, err)

		require.True(t, first.Equal(second))
		require.Equal(t, first.Map(), second.Map())
	})
}

func TestProperty_ListTextRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(pathElement).Draw(t, "values")
		text := ""
		for i, v := range values {
			if i > 0 {
				text += rapid.SampledFrom([]string{",", "\n", " , ", ",\n"}).Draw(t, fmt.Sprintf("sep%d", i))
			}
			text += v
		}

		got, err := definition.List(definition.String()).Validate(text)
		require.NoError(t, err)

		if len(values) == 0 {
			values = []string{}
		}
		require.Equal(t, values, got)
	})
}
