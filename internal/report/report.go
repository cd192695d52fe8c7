// Package report renders the analysis results of a simulation run as the
// fixed label/value text block used in the study write-up, or as JSON for
// machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/edstats/pairsim/internal/stats"
)

// Report pairs the quiz configuration with the computed statistics.
type Report struct {
	QuizItems int          `json:"quiz_items"`
	Stats     stats.Paired `json:"stats"`
}

// New builds a Report for a quiz of quizItems items.
func New(quizItems int, s stats.Paired) Report {
	return Report{QuizItems: quizItems, Stats: s}
}

// WriteText writes the fixed-format text report. Label spelling and order
// match the published analysis output.
func (r Report) WriteText(w io.Writer) error {
	lines := []struct {
		label string
		value any
	}{
		{"sample size:", r.Stats.N},
		{"sim quiz items:", r.QuizItems},
		{"RESULTS:", nil},
		{"pre-quiz mean:", r.Stats.PreMean},
		{"post-quiz mean:", r.Stats.PostMean},
		{"FOR PAIRED T-TEST AND COHEN'S D ANALYSIS:", nil},
		{"difference mean:", r.Stats.DiffMean},
		{"diff std dev:", r.Stats.DiffStdDev},
		{"ANALYSIS VALUES:", nil},
		{"t-statistic:", r.Stats.TStatistic},
		{"cohen's d:", r.Stats.CohensD},
	}

	for _, line := range lines {
		var err error
		if line.value == nil {
			_, err = fmt.Fprintln(w, line.label)
		} else {
			_, err = fmt.Fprintf(w, "%-18s %v\n", line.label, line.value)
		}
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// WriteJSON writes the report as a single JSON object.
func (r Report) WriteJSON(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
