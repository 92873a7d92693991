package errors

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("unexpected token")

	err := NewParseError("inkwell.yaml", 12, underlying)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 12, parseErr.Line)
	require.ErrorIs(t, err, underlying)
	require.Equal(t, "cannot parse inkwell.yaml line 12: unexpected token", err.Error())

	require.Equal(t, "cannot parse inkwell.yaml: unexpected token", NewParseError("inkwell.yaml", 0, underlying).Error())
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("settings.max_file_size", "must be a byte size such as 10MB", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "settings.max_file_size", validationErr.Field)
	require.Nil(t, stdErrors.Unwrap(err))
	require.Equal(t, "invalid settings.max_file_size: must be a byte size such as 10MB", err.Error())
	require.Equal(t, "invalid: empty", NewValidationError("", "empty", nil).Error())
}

func TestExecutionError(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("exit status 2")
	err := NewExecutionError("plot-evaluation", underlying)

	var executionErr *ExecutionError
	require.ErrorAs(t, err, &executionErr)
	require.Equal(t, "plot-evaluation", executionErr.StageID)
	require.ErrorIs(t, err, underlying)
	require.Equal(t, "evaluator failed on stage plot-evaluation: exit status 2", err.Error())
	require.Equal(t, "evaluator failed", NewExecutionError("", nil).Error())
}

func TestProviderError(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("not registered")
	err := NewProviderError("llm", underlying)

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	require.Equal(t, "llm", providerErr.Provider)
	require.ErrorIs(t, err, underlying)
	require.Equal(t, `evaluator provider "llm": not registered`, err.Error())
}
