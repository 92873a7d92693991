package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

const minCardWidth = 30

var (
	cardBorder    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cardTitle     = lipgloss.NewStyle().Bold(true)
	cardMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	cardError     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ratingColours = map[string]lipgloss.Color{
		evaluation.RatingExcellent:        lipgloss.Color("42"),
		evaluation.RatingGood:             lipgloss.Color("214"),
		evaluation.RatingNeedsImprovement: lipgloss.Color("196"),
	}
)

// ResultCard renders one finished stage with its score and feedback.
type ResultCard struct {
	result evaluation.EvaluationResult
}

// NewResultCard creates a card for result.
func NewResultCard(result evaluation.EvaluationResult) ResultCard {
	return ResultCard{result: result}
}

// View renders the card constrained to width columns.
func (c ResultCard) View(width int) string {
	if width < minCardWidth {
		width = minCardWidth
	}
	inner := width - cardBorder.GetHorizontalFrameSize()
	body := lipgloss.NewStyle().Width(inner)

	r := c.result
	lines := []string{cardTitle.Render(r.Name)}
	if r.Description != "" {
		lines = append(lines, body.Render(cardMuted.Render(r.Description)))
	}

	if r.IsCompleted() {
		rating := evaluation.Rate(r.Score)
		style := lipgloss.NewStyle().Foreground(ratingColours[rating])
		lines = append(lines, style.Render(fmt.Sprintf("Score: %g/10 · %s", r.ScoreValue(), rating)))
		if strings.TrimSpace(r.Content) != "" {
			lines = append(lines, "", body.Render(r.Content))
		}
	} else {
		msg := "Evaluation failed"
		if r.Error != "" {
			msg = fmt.Sprintf("%s: %s", msg, r.Error)
		}
		lines = append(lines, body.Render(cardError.Render(msg)))
	}

	return cardBorder.Width(width - cardBorder.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
}
