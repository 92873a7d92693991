package evaluation

import (
	"math"
	"time"
)

// Score bounds for a completed stage.
const (
	MinScore = 0
	MaxScore = 10
)

// StageStatus is the per-run status of a single stage.
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageProcessing StageStatus = "processing"
	StageCompleted  StageStatus = "completed"
	StageError      StageStatus = "error"
)

// IsTerminal returns true once the stage has produced a result.
func (s StageStatus) IsTerminal() bool {
	return s == StageCompleted || s == StageError
}

// CanTransitionTo enforces forward-only movement:
// pending -> processing -> completed | error.
func (s StageStatus) CanTransitionTo(next StageStatus) bool {
	switch s {
	case StagePending:
		return next == StageProcessing
	case StageProcessing:
		return next == StageCompleted || next == StageError
	default:
		return false
	}
}

// StageRunState tracks one stage within one run.
type StageRunState struct {
	StageID string
	Status  StageStatus
}

// ResultStatus is the outcome recorded for a finished stage.
type ResultStatus string

const (
	ResultCompleted ResultStatus = "completed"
	ResultError     ResultStatus = "error"
)

// EvaluationResult is the immutable record produced when a stage finishes.
// Score is set if and only if Status is ResultCompleted.
type EvaluationResult struct {
	StageID     string
	Name        string
	Description string
	Content     string
	Score       *float64
	Status      ResultStatus
	Error       string
	Duration    time.Duration
}

// NewCompletedResult records a successful stage evaluation.
func NewCompletedResult(stage Stage, content string, score float64, duration time.Duration) EvaluationResult {
	s := score
	return EvaluationResult{
		StageID:     stage.ID,
		Name:        stage.Name,
		Description: stage.Description,
		Content:     content,
		Score:       &s,
		Status:      ResultCompleted,
		Duration:    duration,
	}
}

// NewErrorResult records a failed stage evaluation. It never carries a score.
func NewErrorResult(stage Stage, cause error, duration time.Duration) EvaluationResult {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return EvaluationResult{
		StageID:     stage.ID,
		Name:        stage.Name,
		Description: stage.Description,
		Status:      ResultError,
		Error:       msg,
		Duration:    duration,
	}
}

// HasScore reports whether the result carries a numeric score.
func (r EvaluationResult) HasScore() bool {
	return r.Score != nil
}

// ScoreValue returns the score, or 0 when absent.
func (r EvaluationResult) ScoreValue() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// IsCompleted returns true for successful results.
func (r EvaluationResult) IsCompleted() bool {
	return r.Status == ResultCompleted
}

func (r EvaluationResult) clone() EvaluationResult {
	out := r
	if r.Score != nil {
		s := *r.Score
		out.Score = &s
	}
	return out
}

// ValidateScore checks that score is a finite number within [MinScore, MaxScore].
func ValidateScore(stageID string, score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < MinScore || score > MaxScore {
		return NewInvalidScoreError(stageID, score)
	}
	return nil
}
