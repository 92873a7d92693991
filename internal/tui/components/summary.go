package components

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

// SummaryData aggregates what the summary needs to render.
type SummaryData struct {
	Summary   evaluation.Summary
	Phase     evaluation.Phase
	Cancelled bool
	Err       error
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	sum := s.data.Summary

	if sum.Total > 0 && (sum.Finished > 0 || s.data.Phase != evaluation.PhaseIdle) {
		lines = append(lines, fmt.Sprintf("Stages: %d/%d finished", sum.Finished, sum.Total))
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Evaluation cancelled")
	case s.data.Phase == evaluation.PhaseCompleted:
		if sum.Completed > 0 {
			avg := sum.AverageScore
			lines = append(lines, fmt.Sprintf("Overall score: %.1f/10 (%d%%) %s", avg, sum.AveragePercentage, evaluation.Rate(&avg)))
		} else {
			lines = append(lines, "No stage produced a score")
		}
		if line := sum.FailureLine(); line != "" {
			lines = append(lines, line)
		}
	}

	if s.data.Err != nil {
		lines = append(lines, fmt.Sprintf("Error: %v", s.data.Err))
	}

	return strings.Join(lines, "\n")
}
