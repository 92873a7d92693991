package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
	"github.com/alexisbeaulieu97/inkwell/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, m.header())

	finished := m.state.FinishedCount()
	sections = append(sections, sectionStyle.Render("Progress"), components.NewProgress(len(m.catalog)).View(finished))

	entries := components.NewStageList(m.catalog, m.state).Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Stages"), renderStageEntries(entries))
	}

	if len(m.state.Results) > 0 {
		width := min(m.width, maxCardWidth)
		cards := make([]string, 0, len(m.state.Results))
		for _, r := range m.state.Results {
			cards = append(cards, components.NewResultCard(r).View(width))
		}
		sections = append(sections, sectionStyle.Render("Results"), lipgloss.JoinVertical(lipgloss.Left, cards...))
	}

	summary := components.NewSummary(components.SummaryData{
		Summary:   evaluation.Summarize(m.state.Results, len(m.catalog)),
		Phase:     m.state.Phase,
		Cancelled: m.cancelled,
		Err:       m.err,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	if !m.quitting {
		sections = append(sections, helpStyle.Render(m.help()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) header() string {
	doc := m.state.Document
	if doc.IsZero() {
		doc = m.document
	}
	if doc.IsZero() {
		return titleStyle.Render("Inkwell • no document selected")
	}
	size := subtleStyle.Render(fmt.Sprintf("(%s)", humanize.Bytes(uint64(max(doc.Size(), 0)))))
	return lipgloss.JoinHorizontal(lipgloss.Left, titleStyle.Render("Inkwell • "+doc.Name()), " ", size)
}

func (m Model) help() string {
	switch {
	case m.running || m.state.Phase == evaluation.PhaseRunning:
		return "c cancel • q quit"
	case m.state.Phase == evaluation.PhaseCompleted:
		return "r evaluate again • q quit"
	case m.canStart():
		return "enter start • q quit"
	default:
		return "q quit"
	}
}

func renderStageEntries(entries []components.StageEntry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		line := fmt.Sprintf(" %s %s", StatusIcon(entry.Status), entry.Stage.Name)
		if res := entry.Result; res != nil {
			if res.IsCompleted() {
				line = fmt.Sprintf("%s  %g/10 %s", line, res.ScoreValue(), evaluation.Rate(res.Score))
			} else {
				line = fmt.Sprintf("%s  %s", line, failureStyle.Render("failed"))
			}
			if res.Duration > 0 {
				line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
			}
		} else if entry.Current {
			line = fmt.Sprintf("%s  %s", line, runningStyle.Render("evaluating…"))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// StatusIcon returns the glyph representing a stage status.
func StatusIcon(status evaluation.StageStatus) string {
	switch status {
	case evaluation.StageCompleted:
		return successStyle.Render("✓")
	case evaluation.StageProcessing:
		return runningStyle.Render("⏳")
	case evaluation.StageError:
		return failureStyle.Render("✗")
	default:
		return pendingStyle.Render("…")
	}
}
