package config

import (
	"testing"

	"github.com/prospector-dev/prospector/pkg/config/definition"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentVariableSource(t *testing.T) {
	t.Run("Should read prefixed upper-case variables", func(t *testing.T) {
		t.Setenv("PROSPECTOR_STRICTNESS", "high")
		t.Setenv("PROSPECTOR_IGNORE_PATHS", "dist,.git")

		src, err := NewEnvironmentVariableSource(prospectorRegistry())
		require.NoError(t, err)

		raw, ok := src.Lookup("strictness")
		require.True(t, ok)
		assert.Equal(t, "high", raw.Value)
		assert.Equal(t, "PROSPECTOR_STRICTNESS", raw.Origin)
		raw, ok = src.Lookup("ignore_paths")
		require.True(t, ok)
		assert.Equal(t, "dist,.git", raw.Value)
		assert.Equal(t, SourceEnv, src.Type())
		assert.Equal(t, RankEnvironment, src.Rank())
	})

	t.Run("Should ignore variables that name no setting", func(t *testing.T) {
		t.Setenv("PROSPECTOR_NOT_A_SETTING", "1")

		src, err := NewEnvironmentVariableSource(prospectorRegistry())
		require.NoError(t, err)

		_, ok := src.Lookup("not_a_setting")
		assert.False(t, ok)
	})

	t.Run("Should snapshot the environment at construction", func(t *testing.T) {
		t.Setenv("PROSPECTOR_ZERO_EXIT", "true")
		src, err := NewEnvironmentVariableSource(prospectorRegistry())
		require.NoError(t, err)

		t.Setenv("PROSPECTOR_ZERO_EXIT", "false")

		raw, _ := src.Lookup("zero_exit")
		assert.Equal(t, "true", raw.Value)
	})

	t.Run("Should not validate values until resolution", func(t *testing.T) {
		t.Setenv("PROSPECTOR_MAX_LINE_LENGTH", "wide")

		src, err := NewEnvironmentVariableSource(prospectorRegistry())
		require.NoError(t, err)

		raw, ok := src.Lookup("max_line_length")
		require.True(t, ok)
		assert.Equal(t, "wide", raw.Value)
	})

	t.Run("Should honor a custom prefix", func(t *testing.T) {
		t.Setenv("LINT_STRICTNESS", "low")

		src, err := NewEnvironmentVariableSource(prospectorRegistry(), WithEnvPrefix("LINT_"))
		require.NoError(t, err)

		raw, ok := src.Lookup("strictness")
		require.True(t, ok)
		assert.Equal(t, "low", raw.Value)
	})
}

func TestEnvironmentVariableSource_EnvFile(t *testing.T) {
	t.Run("Should fill values the environment does not define", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, ".env",
			[]byte("PROSPECTOR_STRICTNESS=veryhigh\nPROSPECTOR_PROFILES=django\nOTHER=1\n"), 0o644))
		t.Setenv("PROSPECTOR_STRICTNESS", "low")

		src, err := NewEnvironmentVariableSource(prospectorRegistry(), WithFS(fs), WithEnvFile(".env"))
		require.NoError(t, err)

		raw, _ := src.Lookup("strictness")
		assert.Equal(t, "low", raw.Value)
		assert.Equal(t, "PROSPECTOR_STRICTNESS", raw.Origin)
		raw, ok := src.Lookup("profiles")
		require.True(t, ok)
		assert.Equal(t, "django", raw.Value)
		assert.Equal(t, ".env:PROSPECTOR_PROFILES", raw.Origin)
	})

	t.Run("Should read a relative env file from the base directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte("PROSPECTOR_PROFILES=django\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, ".env", []byte("PROSPECTOR_PROFILES=cwd\n"), 0o644))

		src, err := NewEnvironmentVariableSource(prospectorRegistry(),
			WithFS(fs), WithBaseDir("/work"), WithEnvFile(".env"))
		require.NoError(t, err)

		raw, ok := src.Lookup("profiles")
		require.True(t, ok)
		assert.Equal(t, "django", raw.Value)
		assert.Equal(t, "/work/.env:PROSPECTOR_PROFILES", raw.Origin)
	})

	t.Run("Should tolerate a missing env file", func(t *testing.T) {
		src, err := NewEnvironmentVariableSource(prospectorRegistry(),
			WithFS(afero.NewMemMapFs()), WithEnvFile("missing.env"))

		require.NoError(t, err)
		assert.NotNil(t, src)
	})

	t.Run("Should reject a malformed env file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, ".env", []byte("PROSPECTOR_STRICTNESS='unterminated\n"), 0o644))

		_, err := NewEnvironmentVariableSource(prospectorRegistry(), WithFS(fs), WithEnvFile(".env"))

		assert.ErrorIs(t, err, definition.ErrConfigFileParse)
	})
}
