package report

import (
	"io"
	"time"

	"github.com/nao1215/pagescore/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs a compiled report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)

	// WriteTrend outputs the stored score history of one page.
	WriteTrend(trend *Trend) (int, error)
}

// Trend is the score history of one page, newest first.
type Trend struct {
	Identifier string       `json:"identifier"`
	Points     []TrendPoint `json:"points"`
}

// TrendPoint is one stored run of a page.
type TrendPoint struct {
	RunID     string                 `json:"runId"`
	ScannedAt time.Time              `json:"scannedAt"`
	Title     string                 `json:"title"`
	Score     int                    `json:"score"`
	Tier      model.OptimizationTier `json:"tier"`
	Tally     model.ViolationTally   `json:"tally"`
	Issues    []model.Issue          `json:"issues"`
}

// Delta returns the score change of point i against the next older point,
// or 0 for the oldest point.
func (t *Trend) Delta(i int) int {
	if i < 0 || i+1 >= len(t.Points) {
		return 0
	}
	return t.Points[i].Score - t.Points[i+1].Score
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// severityOrder lists severities from most to least severe.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeveritySerious,
	model.SeverityModerate,
	model.SeverityMinor,
}

// timeLayout is used for every timestamp in text and Markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"
