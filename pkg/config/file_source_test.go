package config

import (
	"bytes"
	"errors"
	"io/fs"
	"testing"

	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/prospector-dev/prospector/pkg/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}
	return fsys
}

func TestConfigFileSource_INI(t *testing.T) {
	t.Run("Should read the prospector section with normalized keys", func(t *testing.T) {
		fsys := memFS(t, map[string]string{
			"/project/.prospectorrc": "[prospector]\nstrictness = high\nmax-line-length = 100\n" +
				"ignore-paths =\n    build\n    dist\n",
		})

		src, err := NewConfigFileSource(t.Context(), prospectorRegistry(), ProjectCandidates(),
			WithFS(fsys), WithBaseDir("/project"))
		require.NoError(t, err)

		assert.Equal(t, "/project/.prospectorrc", src.Path())
		raw, ok := src.Lookup("strictness")
		require.True(t, ok)
		assert.Equal(t, "high", raw.Value)
		assert.Equal(t, "/project/.prospectorrc:strictness", raw.Origin)
		raw, ok = src.Lookup("max_line_length")
		require.True(t, ok)
		assert.Equal(t, "100", raw.Value)
		raw, ok = src.Lookup("ignore_paths")
		require.True(t, ok)
		paths, err := definition.List(definition.String()).Validate(raw.Value)
		require.NoError(t, err)
		assert.Equal(t, []string{"build", "dist"}, paths)
	})

	t.Run("Should skip candidates without a prospector section", func(t *testing.T) {
		fsys := memFS(t, map[string]string{
			"setup.cfg": "[metadata]\nname = demo\n",
			"tox.ini":   "[tox]\nenvlist = py3\n\n[prospector]\nprofiles = strict\n",
		})

		src, err := NewConfigFileSource(t.Context(), prospectorRegistry(), ProjectCandidates(), WithFS(fsys))
		require.NoError(t, err)

		assert.Equal(t, "tox.ini", src.Path())
		raw, ok := src.Lookup("profiles")
		require.True(t, ok)
		assert.Equal(t, "strict", raw.Value)
	})

	t.Run("Should use only the first applicable candidate", func(t *testing.T) {
		fsys := memFS(t, map[string]string{
			".prospectorrc": "[prospector]\nstrictness = low\n",
			"setup.cfg":     "[prospector]\nstrictness = high\nzero-exit = true\n",
		})

		src, err := NewConfigFileSource(t.Context(), prospectorRegistry(), ProjectCandidates(), WithFS(fsys))
		require.NoError(t, err)

		raw, _ := src.Lookup("strictness")
		assert.Equal(t, "low", raw.Value)
		_, ok := src.Lookup("zero_exit")
		assert.False(t, ok)
	})

	t.Run("Should warn about and ignore unknown keys", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := logger.ContextWithLogger(t.Context(), logger.NewLogger(&logger.Config{
			Level:      logger.WarnLevel,
			Output:     &buf,
			TimeFormat: "15:04:05",
		}))
		fsys := memFS(t, map[string]string{".prospectorrc": "[prospector]\nshiny = yes\n"})

		src, err := NewConfigFileSource(ctx, prospectorRegistry(), ProjectCandidates(), WithFS(fsys))
		require.NoError(t, err)

		_, ok := src.Lookup("shiny")
		assert.False(t, ok)
		assert.Contains(t, buf.String(), "shiny")
	})

	t.Run("Should warn when two spellings name the same setting", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := logger.ContextWithLogger(t.Context(), logger.NewLogger(&logger.Config{
			Level:      logger.WarnLevel,
			Output:     &buf,
			TimeFormat: "15:04:05",
		}))
		fsys := memFS(t, map[string]string{
			".prospectorrc": "[prospector]\nignore-paths = build\nignore_paths = dist\n",
		})

		src, err := NewConfigFileSource(ctx, prospectorRegistry(), ProjectCandidates(), WithFS(fsys))
		require.NoError(t, err)

		raw, ok := src.Lookup("ignore_paths")
		require.True(t, ok)
		assert.Equal(t, "dist", raw.Value)
		assert.Contains(t, buf.String(), "twice")
		assert.Contains(t, buf.String(), ".prospectorrc")
	})

	t.Run("Should report the line of a malformed file", func(t *testing.T) {
		fsys := memFS(t, map[string]string{".prospectorrc": "[prospector]\nstrictness high\n"})

		_, err := NewConfigFileSource(t.Context(), prospectorRegistry(), ProjectCandidates(), WithFS(fsys))

		var parseErr *definition.ConfigFileParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, ".prospectorrc", parseErr.Path)
		assert.Equal(t, 2, parseErr.Line)
	})
}

func TestConfigFileSource_TOML(t *testing.T) {
	t.Run("Should read tool.prospector from pyproject.toml with native types", func(t *testing.T) {
		fsys := memFS(t, map[string]string{
			"pyproject.toml": "[project]\nname = \"demo\"\n\n[tool.prospector]\n" +
				"max-line-length = 100\nignore-paths = [\"build\", \"dist\"]\ndoc-warnings = true\n",
		})

		src, err := NewConfigFileSource(t.Context(), prospectorRegistry(), ProjectCandidates(), WithFS(fsys))
		require.NoError(t, err)

		assert.Equal(t, "pyproject.toml", src.Path())
		raw, _ := src.Lookup("max_line_length")
		assert.EqualValues(t, 100, raw.Value)
		raw, _ = src.Lookup("ignore_paths")
		assert.Equal(t, []any{"build", "dist"}, raw.Value)
		raw, _ = src.Lookup("doc_warnings")
		assert.Equal(t, true, raw.Value)
	})

	t.Run("Should skip pyproject.toml without a prospector table", func(t *testing.T) {
		fsys := memFS(t, map[string]string{"pyproject.toml": "[tool.black]\nline-length = 88\n"})

		src, err := NewConfigFileSource(t.Context(), prospectorRegistry(), ProjectCandidates(), WithFS(fsys))
		require.NoError(t, err)

		assert.Empty(t, src.Path())
		_, ok := src.Lookup("max_line_length")
		assert.False(t, ok)
	})

	t.Run("Should report line and column of malformed TOML", func(t *testing.T) {
		fsys := memFS(t, map[string]string{"pyproject.toml": "[tool.prospector]\nstrictness = \n"})

		_, err := NewConfigFileSource(t.Context(), prospectorRegistry(), ProjectCandidates(), WithFS(fsys))

		var parseErr *definition.ConfigFileParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, 2, parseErr.Line)
		assert.Positive(t, parseErr.Column)
	})
}

func TestConfigFileSource_Candidates(t *testing.T) {
	t.Run("Should yield an empty source when nothing applies", func(t *testing.T) {
		src, err := NewConfigFileSource(t.Context(), prospectorRegistry(), ProjectCandidates(),
			WithFS(afero.NewMemMapFs()))
		require.NoError(t, err)

		assert.Empty(t, src.Path())
		for _, name := range prospectorRegistry().Names() {
			_, ok := src.Lookup(name)
			assert.False(t, ok, name)
		}
	})

	t.Run("Should prefer an explicit file", func(t *testing.T) {
		fsys := memFS(t, map[string]string{
			"/etc/lint.cfg": "[prospector]\nstrictness = veryhigh\n",
			".prospectorrc": "[prospector]\nstrictness = low\n",
		})
		candidates := append([]Candidate{ExplicitFile("/etc/lint.cfg")}, ProjectCandidates()...)

		src, err := NewConfigFileSource(t.Context(), prospectorRegistry(), candidates, WithFS(fsys))
		require.NoError(t, err)

		raw, _ := src.Lookup("strictness")
		assert.Equal(t, "veryhigh", raw.Value)
	})

	t.Run("Should fail when an explicit file is missing", func(t *testing.T) {
		_, err := NewConfigFileSource(t.Context(), prospectorRegistry(),
			[]Candidate{ExplicitFile("/nowhere.cfg")}, WithFS(afero.NewMemMapFs()))

		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("Should fail when an explicit file has no prospector section", func(t *testing.T) {
		fsys := memFS(t, map[string]string{
			"/x/custom.cfg": "[other]\nstrictness = high\n",
			".prospectorrc": "[prospector]\nstrictness = low\n",
		})
		candidates := append([]Candidate{ExplicitFile("/x/custom.cfg")}, ProjectCandidates()...)

		_, err := NewConfigFileSource(t.Context(), prospectorRegistry(), candidates, WithFS(fsys))

		var parseErr *definition.ConfigFileParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "/x/custom.cfg", parseErr.Path)
		assert.ErrorContains(t, err, "[prospector]")
	})

	t.Run("Should name tool.prospector for an explicit pyproject.toml", func(t *testing.T) {
		fsys := memFS(t, map[string]string{"/x/pyproject.toml": "[tool.black]\nline-length = 88\n"})

		_, err := NewConfigFileSource(t.Context(), prospectorRegistry(),
			[]Candidate{ExplicitFile("/x/pyproject.toml")}, WithFS(fsys))

		assert.ErrorIs(t, err, definition.ErrConfigFileParse)
		assert.ErrorContains(t, err, "[tool.prospector]")
	})

	t.Run("Should skip directories named like candidates", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, fsys.MkdirAll(".prospectorrc", 0o755))

		src, err := NewConfigFileSource(t.Context(), prospectorRegistry(), ProjectCandidates(), WithFS(fsys))
		require.NoError(t, err)
		assert.Empty(t, src.Path())
	})
}
