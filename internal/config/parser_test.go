package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	inkerrors "github.com/alexisbeaulieu97/inkwell/pkg/errors"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		contents string
		assert   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:     "empty document yields defaults",
			contents: "",
			assert: func(t *testing.T, cfg *Config, err error) {
				require.NoError(t, err)
				require.Equal(t, Default(), *cfg)
			},
		},
		{
			name: "partial document keeps unspecified defaults",
			contents: `version: "1.0"
settings:
  stage_timeout: 30
  max_file_size: 25MB
evaluator:
  provider: simulated
  retries: 2
  simulated:
    seed: 42
`,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.NoError(t, err)
				require.Equal(t, 30*time.Second, cfg.Settings.StageTimeoutDuration())
				require.Equal(t, ByteSize(25_000_000), cfg.Settings.MaxFileSize)
				require.Equal(t, []string{".pdf", ".docx", ".doc"}, cfg.Settings.Extensions())
				require.Equal(t, 2, cfg.Evaluator.Retries)
				require.Equal(t, uint64(42), cfg.Evaluator.Simulated.Seed)
				require.Equal(t, 6, cfg.Evaluator.Simulated.MinScore)
				require.Equal(t, 9, cfg.Evaluator.Simulated.MaxScore)
				require.Equal(t, "info", cfg.Log.Level)
			},
		},
		{
			name: "command provider",
			contents: `version: "1.0"
evaluator:
  provider: command
  command:
    run: ./score.sh
    env:
      MODEL: local
`,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.NoError(t, err)
				require.Equal(t, "command", cfg.Evaluator.Provider)
				require.Equal(t, "./score.sh", cfg.Evaluator.Command.Run)
				require.Equal(t, map[string]string{"MODEL": "local"}, cfg.Evaluator.Command.Env)
			},
		},
		{
			name: "command provider requires run",
			contents: `version: "1.0"
evaluator:
  provider: command
`,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *inkerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Equal(t, "evaluator.command.run", validationErr.Field)
			},
		},
		{
			name: "inverted score range is rejected",
			contents: `version: "1.0"
evaluator:
  provider: simulated
  simulated:
    min_score: 9
    max_score: 3
`,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *inkerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Equal(t, "evaluator.simulated.max_score", validationErr.Field)
			},
		},
		{
			name: "bad log level is rejected",
			contents: `version: "1.0"
log:
  level: loud
`,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *inkerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Equal(t, "log.level", validationErr.Field)
			},
		},
		{
			name: "bad version is rejected",
			contents: `version: "beta"
`,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *inkerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Equal(t, "version", validationErr.Field)
			},
		},
		{
			name: "unparseable byte size reports a parse error",
			contents: `version: "1.0"
settings:
  max_file_size: lots
`,
			assert: func(t *testing.T, cfg *Config, err error) {
				var parseErr *inkerrors.ParseError
				require.ErrorAs(t, err, &parseErr)
				require.Equal(t, 3, parseErr.Line)
			},
		},
		{
			name: "unknown keys are rejected",
			contents: `version: "1.0"
colour: blue
`,
			assert: func(t *testing.T, cfg *Config, err error) {
				var parseErr *inkerrors.ParseError
				require.ErrorAs(t, err, &parseErr)
				require.Equal(t, 2, parseErr.Line)
			},
		},
		{
			name: "extensions are normalised",
			contents: `version: "1.0"
settings:
  accepted_extensions: [PDF, .Txt]
`,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.NoError(t, err)
				require.Equal(t, []string{".pdf", ".txt"}, cfg.Settings.Extensions())
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Parse("inkwell.yaml", []byte(tc.contents))
			tc.assert(t, cfg, err)
		})
	}
}

func TestParseConfigReadsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "inkwell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nlog:\n  level: debug\n"), 0o644))

	cfg, err := ParseConfig(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestParseConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var parseErr *inkerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithExplicitPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nsettings:\n  stage_timeout: 5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Settings.StageTimeout)
}

func TestByteSizeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "10 MB", ByteSize(10_000_000).String())
	require.Equal(t, "0 B", ByteSize(-1).String())
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, ValidateConfig(&cfg))
	require.Zero(t, cfg.Settings.StageTimeoutDuration())
}

func TestValidateConfigNil(t *testing.T) {
	t.Parallel()

	require.Error(t, ValidateConfig(nil))
}
