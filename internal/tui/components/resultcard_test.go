package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

var plotStage = evaluation.Stage{
	ID:          "plot-evaluation",
	Name:        "Plot Evaluation",
	Description: "Story structure and pacing",
}

func TestResultCardCompleted(t *testing.T) {
	t.Parallel()

	card := NewResultCard(evaluation.NewCompletedResult(plotStage, "Strong opening chapters.", 7, time.Second))
	view := card.View(60)

	require.Contains(t, view, "Plot Evaluation")
	require.Contains(t, view, "Score: 7/10 · Good")
	require.Contains(t, view, "Strong opening chapters.")
	require.NotContains(t, view, "Evaluation failed")
}

func TestResultCardError(t *testing.T) {
	t.Parallel()

	card := NewResultCard(evaluation.NewErrorResult(plotStage, errors.New("timed out after 30s"), time.Second))
	view := card.View(60)

	require.Contains(t, view, "Evaluation failed: timed out after 30s")
	require.NotContains(t, view, "Score:")
}

func TestResultCardRespectsWidth(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("feedback ", 40)
	view := NewResultCard(evaluation.NewCompletedResult(plotStage, content, 9, 0)).View(50)
	require.LessOrEqual(t, lipgloss.Width(view), 50)

	narrow := NewResultCard(evaluation.NewCompletedResult(plotStage, content, 9, 0)).View(5)
	require.LessOrEqual(t, lipgloss.Width(narrow), minCardWidth)
}
