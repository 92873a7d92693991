// Package errors holds the error types shared by configuration loading,
// document intake and evaluator providers. Each type wraps an optional cause
// so callers can match on both the type and the underlying error.
package errors

import (
	"fmt"
	"strings"
)

// cause is embedded by every error type in this package.
type cause struct {
	Err error
}

// Unwrap exposes the wrapped error, if any.
func (c cause) Unwrap() error { return c.Err }

func (c cause) text() string {
	if c.Err == nil {
		return ""
	}
	return c.Err.Error()
}

// ParseError reports a file that could not be decoded. Line is 1-based and
// zero when unknown.
type ParseError struct {
	cause
	Path    string
	Line    int
	Message string
}

// NewParseError wraps a decoding failure for path.
func NewParseError(path string, line int, err error) error {
	pe := &ParseError{cause: cause{Err: err}, Path: path, Line: line}
	pe.Message = pe.text()
	return pe
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s line %d", e.Path, e.Line)
	}
	return "cannot parse " + loc + ": " + e.Message
}

// ValidationError rejects a configuration value or a document. Field names
// the offending setting using its dotted YAML path.
type ValidationError struct {
	cause
	Field   string
	Message string
}

// NewValidationError builds a ValidationError. err may be nil.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{cause: cause{Err: err}, Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid: " + e.Message
	}
	return "invalid " + e.Field + ": " + e.Message
}

// ExecutionError wraps a failure raised while an evaluator processed a stage.
type ExecutionError struct {
	cause
	StageID string
}

// NewExecutionError attributes err to stageID.
func NewExecutionError(stageID string, err error) error {
	return &ExecutionError{cause: cause{Err: err}, StageID: stageID}
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	b.WriteString("evaluator failed")
	if e.StageID != "" {
		b.WriteString(" on stage ")
		b.WriteString(e.StageID)
	}
	if msg := e.text(); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

// ProviderError reports an evaluator provider that could not be registered
// or built.
type ProviderError struct {
	cause
	Provider string
	Message  string
}

// NewProviderError wraps err for the named provider.
func NewProviderError(provider string, err error) error {
	pe := &ProviderError{cause: cause{Err: err}, Provider: provider}
	pe.Message = pe.text()
	return pe
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return "evaluator provider: " + e.Message
	}
	return fmt.Sprintf("evaluator provider %q: %s", e.Provider, e.Message)
}
