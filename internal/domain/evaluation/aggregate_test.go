package evaluation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func scored(id string, score float64) EvaluationResult {
	return NewCompletedResult(Stage{ID: id, Name: id}, "feedback", score, 0)
}

func failed(id string) EvaluationResult {
	return NewErrorResult(Stage{ID: id, Name: id}, ErrStageTimeout, 0)
}

func TestAverageScoreEmptyAndAllErrors(t *testing.T) {
	t.Parallel()

	require.Zero(t, AverageScore(nil))
	require.Zero(t, AveragePercentage(nil))

	allErrors := []EvaluationResult{failed("a"), failed("b")}
	require.Zero(t, AverageScore(allErrors))
	require.Zero(t, AveragePercentage(allErrors))
}

func TestAverageScoreRoundsToOneDecimal(t *testing.T) {
	t.Parallel()

	results := []EvaluationResult{scored("a", 6), scored("b", 8), scored("c", 10)}
	require.Equal(t, 8.0, AverageScore(results))
	require.Equal(t, 80, AveragePercentage(results))

	thirds := []EvaluationResult{scored("a", 7), scored("b", 7), scored("c", 8)}
	require.Equal(t, 7.3, AverageScore(thirds))
	require.Equal(t, 73, AveragePercentage(thirds))
}

func TestAverageScoreIgnoresErrors(t *testing.T) {
	t.Parallel()

	results := []EvaluationResult{
		scored("line-editing", 7),
		failed("plot-evaluation"),
		scored("character-evaluation", 9),
		scored("book-flow", 8),
		scored("worldbuilding", 7),
		scored("overall-assessment", 9),
	}

	require.Len(t, CompletedResults(results), 5)
	require.Len(t, ErroredResults(results), 1)
	require.Equal(t, "plot-evaluation", ErroredResults(results)[0].StageID)
	require.Equal(t, 8.0, AverageScore(results))
	require.Equal(t, 80, AveragePercentage(results))
}

func TestAveragePercentageBounds(t *testing.T) {
	t.Parallel()

	require.Equal(t, 100, AveragePercentage([]EvaluationResult{scored("a", 10)}))
	require.Equal(t, 0, AveragePercentage([]EvaluationResult{scored("a", 0)}))
}

func TestRate(t *testing.T) {
	t.Parallel()

	score := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		score *float64
		want  string
	}{
		{name: "missing", score: nil, want: RatingUnavailable},
		{name: "excellent boundary", score: score(8), want: RatingExcellent},
		{name: "good boundary", score: score(6), want: RatingGood},
		{name: "good upper", score: score(7.9), want: RatingGood},
		{name: "needs improvement", score: score(5.5), want: RatingNeedsImprovement},
		{name: "zero", score: score(0), want: RatingNeedsImprovement},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Rate(tt.score))
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("partial failure", func(t *testing.T) {
		t.Parallel()
		summary := Summarize([]EvaluationResult{scored("a", 6), failed("b"), scored("c", 9)}, 6)
		require.Equal(t, 6, summary.Total)
		require.Equal(t, 3, summary.Finished)
		require.Equal(t, 2, summary.Completed)
		require.Equal(t, 1, summary.Errored)
		require.Equal(t, 7.5, summary.AverageScore)
		require.Equal(t, 75, summary.AveragePercentage)
		require.False(t, summary.AllFailed())
		require.Equal(t, "1 of 6 stages failed", summary.FailureLine())
	})

	t.Run("total failure", func(t *testing.T) {
		t.Parallel()
		summary := Summarize([]EvaluationResult{failed("a"), failed("b")}, 2)
		require.True(t, summary.AllFailed())
		require.Equal(t, "all 2 stages failed", summary.FailureLine())
	})

	t.Run("no failures", func(t *testing.T) {
		t.Parallel()
		summary := Summarize([]EvaluationResult{scored("a", 9)}, 1)
		require.Empty(t, summary.FailureLine())
	})
}

func TestValidateScore(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateScore("a", 0))
	require.NoError(t, ValidateScore("a", 10))
	require.Error(t, ValidateScore("a", -0.5))
	require.Error(t, ValidateScore("a", 10.1))
}
