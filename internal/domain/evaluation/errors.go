package evaluation

import (
	"errors"
	"fmt"
)

// ErrorCode identifies well-known domain error categories used across the
// evaluation domain layer.
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeDuplicate    ErrorCode = "DUPLICATE_ID"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeMissing      ErrorCode = "MISSING_REQUIRED"
	ErrCodeState        ErrorCode = "INVALID_STATE"
	ErrCodeEvaluation   ErrorCode = "EVALUATION_ERROR"
	ErrCodeInvalidScore ErrorCode = "INVALID_SCORE"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeCancelled    ErrorCode = "CANCELLED"
)

// Sentinels for errors.Is checks. Matching is by code only, so any
// DomainError carrying the same code matches regardless of message.
var (
	ErrInvalidState = &DomainError{Code: ErrCodeState}
	ErrEvaluation   = &DomainError{Code: ErrCodeEvaluation}
	ErrStageTimeout = &DomainError{Code: ErrCodeTimeout}
	ErrRunCancelled = &DomainError{Code: ErrCodeCancelled}
)

// DomainError represents a typed error enriched with contextual data while
// remaining free from infrastructure dependencies.
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = "unspecified"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As usage.
func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another DomainError by code. A target with an empty message
// acts as a category sentinel; otherwise the messages must match too.
func (e *DomainError) Is(target error) bool {
	var domainErr *DomainError
	if !errors.As(target, &domainErr) || domainErr == nil {
		return false
	}
	if e.Code != domainErr.Code {
		return false
	}
	return domainErr.Message == "" || e.Message == domainErr.Message
}

// WithContext clones the error with additional contextual metadata.
func (e *DomainError) WithContext(ctx map[string]interface{}) *DomainError {
	if e == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Context: merged,
	}
}

// CodeOf returns the code of the first DomainError in err's chain.
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr != nil {
		return domainErr.Code
	}
	return ""
}

func newDomainError(code ErrorCode, message string, cause error, context map[string]interface{}) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// NewInvalidStateError reports a command issued in a phase that forbids it.
func NewInvalidStateError(operation string, phase Phase, reason string) *DomainError {
	return newDomainError(ErrCodeState, reason, nil, map[string]interface{}{
		"operation": operation,
		"phase":     string(phase),
	})
}

// NewEvaluationError wraps an evaluator failure for a single stage.
func NewEvaluationError(stageID string, cause error) *DomainError {
	return newDomainError(ErrCodeEvaluation, "stage evaluation failed", cause, map[string]interface{}{
		"stage_id": stageID,
	})
}

// NewTimeoutError reports a stage that exceeded its time budget.
func NewTimeoutError(stageID string, cause error) *DomainError {
	return newDomainError(ErrCodeTimeout, "stage evaluation timed out", cause, map[string]interface{}{
		"stage_id": stageID,
	})
}

// NewCancellationError reports a run discarded by reset or cancel.
func NewCancellationError(runID string, cause error) *DomainError {
	return newDomainError(ErrCodeCancelled, "run cancelled", cause, map[string]interface{}{
		"run_id": runID,
	})
}

// NewInvalidScoreError reports a payload score outside the accepted range.
func NewInvalidScoreError(stageID string, score float64) *DomainError {
	return newDomainError(ErrCodeInvalidScore, fmt.Sprintf("score %v outside [%d,%d]", score, MinScore, MaxScore), nil, map[string]interface{}{
		"stage_id": stageID,
	})
}

func newValidationError(message string, context map[string]interface{}) *DomainError {
	return newDomainError(ErrCodeValidation, message, nil, context)
}

func newDuplicateError(identifier string) *DomainError {
	return newDomainError(ErrCodeDuplicate, "duplicate identifier", nil, map[string]interface{}{
		"id": identifier,
	})
}

func newMissingFieldError(field string) *DomainError {
	return newDomainError(ErrCodeMissing, "missing required field", nil, map[string]interface{}{
		"field": field,
	})
}

// NewMissingDocumentError reports a command that needs a document handle but
// was given none.
func NewMissingDocumentError(operation string) *DomainError {
	return newMissingFieldError("document").WithContext(map[string]interface{}{
		"operation": operation,
	})
}
