// Package report turns a run snapshot into an exportable summary.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

// Report is the export shape of a run.
type Report struct {
	RunID       string        `yaml:"run_id,omitempty"`
	Document    DocumentInfo  `yaml:"document"`
	Phase       string        `yaml:"phase"`
	StartedAt   time.Time     `yaml:"started_at,omitempty"`
	CompletedAt time.Time     `yaml:"completed_at,omitempty"`
	Summary     SummaryInfo   `yaml:"summary"`
	Results     []ResultEntry `yaml:"results"`
}

// DocumentInfo describes the evaluated document.
type DocumentInfo struct {
	Name string `yaml:"name"`
	Size int64  `yaml:"size"`
	Path string `yaml:"path,omitempty"`
}

// SummaryInfo holds the aggregate figures.
type SummaryInfo struct {
	Stages            int     `yaml:"stages"`
	Finished          int     `yaml:"finished"`
	Completed         int     `yaml:"completed"`
	Failed            int     `yaml:"failed"`
	AverageScore      float64 `yaml:"average_score"`
	AveragePercentage int     `yaml:"average_percentage"`
	Rating            string  `yaml:"rating"`
}

// ResultEntry is one finished stage.
type ResultEntry struct {
	StageID    string   `yaml:"stage_id"`
	Name       string   `yaml:"name"`
	Status     string   `yaml:"status"`
	Score      *float64 `yaml:"score,omitempty"`
	Rating     string   `yaml:"rating"`
	Content    string   `yaml:"content,omitempty"`
	Error      string   `yaml:"error,omitempty"`
	DurationMS int64    `yaml:"duration_ms"`
}

// Build converts a snapshot into a Report. Results keep completion order.
func Build(state evaluation.RunState) Report {
	summary := evaluation.Summarize(state.Results, len(state.Stages))

	r := Report{
		RunID: state.RunID,
		Document: DocumentInfo{
			Name: state.Document.Name(),
			Size: state.Document.Size(),
			Path: state.Document.Path(),
		},
		Phase:       string(state.Phase),
		StartedAt:   state.StartedAt,
		CompletedAt: state.CompletedAt,
		Summary: SummaryInfo{
			Stages:            summary.Total,
			Finished:          summary.Finished,
			Completed:         summary.Completed,
			Failed:            summary.Errored,
			AverageScore:      summary.AverageScore,
			AveragePercentage: summary.AveragePercentage,
			Rating:            overallRating(summary),
		},
		Results: make([]ResultEntry, 0, len(state.Results)),
	}

	for _, res := range state.Results {
		entry := ResultEntry{
			StageID:    res.StageID,
			Name:       res.Name,
			Status:     string(res.Status),
			Rating:     evaluation.Rate(res.Score),
			Content:    res.Content,
			Error:      res.Error,
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Score != nil {
			s := *res.Score
			entry.Score = &s
		}
		r.Results = append(r.Results, entry)
	}
	return r
}

// Exportable reports whether the snapshot has at least one completed result.
func Exportable(state evaluation.RunState) bool {
	return len(evaluation.CompletedResults(state.Results)) > 0
}

// WriteYAML encodes the report as YAML.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// RenderText writes a plain-text summary suitable for non-interactive output.
func RenderText(w io.Writer, r Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\nEvaluation Results: %s (%s)\n", r.Document.Name, humanize.Bytes(uint64(max(r.Document.Size, 0))))
	b.WriteString(strings.Repeat("=", 72) + "\n")
	fmt.Fprintf(&b, "%-28s %-12s %-8s %s\n", "Stage", "Status", "Score", "Rating")
	b.WriteString(strings.Repeat("-", 72) + "\n")

	for _, res := range r.Results {
		score := "-"
		if res.Score != nil {
			score = fmt.Sprintf("%g/10", *res.Score)
		}
		fmt.Fprintf(&b, "%-28s %-12s %-8s %s\n",
			truncate(res.Name, 28),
			fmt.Sprintf("%s %s", statusSymbol(res.Status), res.Status),
			score,
			res.Rating,
		)
	}

	b.WriteString(strings.Repeat("=", 72) + "\n")
	if r.Summary.Completed > 0 {
		fmt.Fprintf(&b, "Overall score: %.1f/10 (%d%%) %s\n", r.Summary.AverageScore, r.Summary.AveragePercentage, r.Summary.Rating)
	} else {
		b.WriteString("Overall score: unavailable\n")
	}
	if line := failureLine(r.Summary); line != "" {
		b.WriteString(line + "\n")
	}

	for _, res := range r.Results {
		switch {
		case res.Error != "":
			fmt.Fprintf(&b, "\n--- %s ---\nEvaluation failed: %s\n", res.Name, res.Error)
		case res.Content != "":
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", res.Name, res.Content)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func overallRating(s evaluation.Summary) string {
	if s.Completed == 0 {
		return evaluation.RatingUnavailable
	}
	avg := s.AverageScore
	return evaluation.Rate(&avg)
}

func failureLine(s SummaryInfo) string {
	return evaluation.Summary{
		Total:     s.Stages,
		Finished:  s.Finished,
		Completed: s.Completed,
		Errored:   s.Failed,
	}.FailureLine()
}

func statusSymbol(status string) string {
	switch evaluation.ResultStatus(status) {
	case evaluation.ResultCompleted:
		return "✔"
	case evaluation.ResultError:
		return "✖"
	default:
		return "?"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
