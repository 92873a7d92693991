package simulated

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

var plot = evaluation.Stage{ID: "plot-evaluation", Name: "Plot Evaluation"}

func TestEvaluateProducesScoresInRange(t *testing.T) {
	t.Parallel()

	e := New(Options{MinScore: 6, MaxScore: 9, Seed: 7})
	doc := evaluation.NewMemoryDocument("draft.pdf", []byte("x"))

	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		payload, err := e.Evaluate(context.Background(), doc, plot)
		require.NoError(t, err)
		require.GreaterOrEqual(t, payload.Score, 6.0)
		require.LessOrEqual(t, payload.Score, 9.0)
		require.Equal(t, float64(int(payload.Score)), payload.Score)
		seen[payload.Score] = true
	}
	require.Len(t, seen, 4, "every integer in range should appear")
}

func TestEvaluateIsReproducibleWithSeed(t *testing.T) {
	t.Parallel()

	doc := evaluation.NewMemoryDocument("draft.pdf", []byte("x"))
	a := New(Options{MinScore: 0, MaxScore: 10, Seed: 99})
	b := New(Options{MinScore: 0, MaxScore: 10, Seed: 99})

	for i := 0; i < 20; i++ {
		pa, err := a.Evaluate(context.Background(), doc, plot)
		require.NoError(t, err)
		pb, err := b.Evaluate(context.Background(), doc, plot)
		require.NoError(t, err)
		require.Equal(t, pa.Score, pb.Score)
	}
}

func TestEvaluateFeedbackMentionsStage(t *testing.T) {
	t.Parallel()

	payload, err := New(Options{Seed: 1}).Evaluate(context.Background(), evaluation.Document{}, plot)
	require.NoError(t, err)
	require.Contains(t, payload.Content, "the plot evaluation aspect of your document")
}

func TestEvaluateHonoursCancellation(t *testing.T) {
	t.Parallel()

	e := New(Options{MinDelay: time.Minute, MaxDelay: time.Minute, Seed: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := e.Evaluate(ctx, evaluation.Document{}, plot)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestEvaluateInjectsFailures(t *testing.T) {
	t.Parallel()

	e := New(Options{FailureRate: 1, Seed: 3})
	_, err := e.Evaluate(context.Background(), evaluation.Document{}, plot)
	require.ErrorContains(t, err, "simulated failure while evaluating plot evaluation")
}

func TestNewNormalisesBounds(t *testing.T) {
	t.Parallel()

	e := New(Options{MinDelay: 3, MaxDelay: 1, MinScore: 12, MaxScore: -2})
	require.Equal(t, time.Duration(1), e.opts.MinDelay)
	require.Equal(t, time.Duration(3), e.opts.MaxDelay)
	require.Equal(t, 0, e.opts.MinScore)
	require.Equal(t, 10, e.opts.MaxScore)
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	require.Equal(t, 2*time.Second, opts.MinDelay)
	require.Equal(t, 5*time.Second, opts.MaxDelay)
	require.Equal(t, 6, opts.MinScore)
	require.Equal(t, 9, opts.MaxScore)
}
