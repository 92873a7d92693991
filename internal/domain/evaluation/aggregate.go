package evaluation

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Rating labels shown next to a score.
const (
	RatingExcellent        = "Excellent"
	RatingGood             = "Good"
	RatingNeedsImprovement = "Needs Improvement"
	RatingUnavailable      = "N/A"
)

// CompletedResults returns the results with status completed, in order.
func CompletedResults(results []EvaluationResult) []EvaluationResult {
	return lo.Filter(results, func(r EvaluationResult, _ int) bool {
		return r.Status == ResultCompleted
	})
}

// ErroredResults returns the results with status error, in order.
func ErroredResults(results []EvaluationResult) []EvaluationResult {
	return lo.Filter(results, func(r EvaluationResult, _ int) bool {
		return r.Status == ResultError
	})
}

// AverageScore is the mean score of completed results, rounded to one
// decimal place. It is 0 when no completed result carries a score.
func AverageScore(results []EvaluationResult) float64 {
	scored := lo.Filter(results, func(r EvaluationResult, _ int) bool {
		return r.Status == ResultCompleted && r.HasScore()
	})
	if len(scored) == 0 {
		return 0
	}
	total := lo.SumBy(scored, func(r EvaluationResult) float64 { return *r.Score })
	return math.Round(total/float64(len(scored))*10) / 10
}

// AveragePercentage is round(AverageScore * 10), clamped to [0, 100].
func AveragePercentage(results []EvaluationResult) int {
	pct := int(math.Round(AverageScore(results) * 10))
	return lo.Clamp(pct, 0, 100)
}

// Rate maps a score to its display label.
func Rate(score *float64) string {
	switch {
	case score == nil:
		return RatingUnavailable
	case *score >= 8:
		return RatingExcellent
	case *score >= 6:
		return RatingGood
	default:
		return RatingNeedsImprovement
	}
}

// Summary aggregates a result list against the number of stages in the run.
type Summary struct {
	Total             int
	Finished          int
	Completed         int
	Errored           int
	AverageScore      float64
	AveragePercentage int
}

// Summarize computes aggregate counts and scores. Safe on partial lists.
func Summarize(results []EvaluationResult, totalStages int) Summary {
	return Summary{
		Total:             totalStages,
		Finished:          len(results),
		Completed:         lo.CountBy(results, func(r EvaluationResult) bool { return r.Status == ResultCompleted }),
		Errored:           lo.CountBy(results, func(r EvaluationResult) bool { return r.Status == ResultError }),
		AverageScore:      AverageScore(results),
		AveragePercentage: AveragePercentage(results),
	}
}

// AllFailed reports a finished run where no stage succeeded.
func (s Summary) AllFailed() bool {
	return s.Finished > 0 && s.Completed == 0
}

// FailureLine describes partial failure, e.g. "2 of 6 stages failed".
// It is empty when nothing failed.
func (s Summary) FailureLine() string {
	if s.Errored == 0 {
		return ""
	}
	if s.AllFailed() && s.Finished == s.Total {
		return fmt.Sprintf("all %d stages failed", s.Total)
	}
	return fmt.Sprintf("%d of %d stages failed", s.Errored, s.Total)
}
