package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/pagescore/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// The layout uses plain ASCII separators so it can be piped to files.
type SimpleWriter struct {
	baseWriter

	// showEmpty lists pages without issues in full instead of counting them.
	showEmpty bool

	// verbose adds recommendations and failure notes to each page.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list pages that have no issues.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with recommendations.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, "PAGESCORE REPORT")
	fmt.Fprintf(&sb, "Run ID:         %s\n", report.RunID)
	fmt.Fprintf(&sb, "Generated:      %s\n", report.GeneratedAt.Format(timeLayout))
	fmt.Fprintf(&sb, "Pages Scored:   %d\n\n", report.Stats.TotalPages)

	w.writeSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteTrend outputs the score history of one page.
func (w *SimpleWriter) WriteTrend(trend *Trend) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, "PAGESCORE HISTORY")
	fmt.Fprintf(&sb, "Page:           %s\n", trend.Identifier)
	fmt.Fprintf(&sb, "Runs:           %d\n\n", len(trend.Points))

	w.writeSection(&sb, "SCORE HISTORY")
	if len(trend.Points) == 0 {
		sb.WriteString("  No stored runs for this page.\n\n")
	}
	for i, p := range trend.Points {
		fmt.Fprintf(&sb, "  %s  %3d  %-18s %s  (%s)\n",
			p.ScannedAt.Format(timeLayout), p.Score, p.Tier.Label(), formatDelta(trend.Delta(i)), p.RunID)
		if w.verbose {
			for _, issue := range p.Issues {
				fmt.Fprintf(&sb, "      %s %s\n", severityIndicator(issue.Severity), issue.Message)
			}
		}
	}
	sb.WriteString("\n")

	w.writeFooter(&sb)
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(centered(title, 70))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeSummary writes fleet statistics and the tier breakdown.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.Report) {
	stats := report.Stats
	w.writeSection(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Average Score:     %d\n", stats.AverageScore)
	fmt.Fprintf(sb, "  Total Issues:      %d\n", stats.TotalIssueCount)
	fmt.Fprintf(sb, "  Critical Issues:   %d\n\n", stats.CriticalIssueCount)

	fmt.Fprintf(sb, "  OPTIMISED:         %d\n", stats.OptimizedPageCount)
	fmt.Fprintf(sb, "  NEEDS IMPROVEMENT: %d\n", stats.NeedsWorkCount)
	fmt.Fprintf(sb, "  CRITICAL:          %d\n\n", stats.CriticalPageCount)
}

// writePages writes one block per page in report order.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.Report) {
	w.writeSection(sb, "PAGES")

	clean := 0
	for i := range report.Pages {
		entry := &report.Pages[i]
		if len(entry.Issues) == 0 && entry.Error == "" && !w.showEmpty {
			clean++
			continue
		}
		w.writePage(sb, entry)
	}

	if clean > 0 {
		fmt.Fprintf(sb, "  %d page(s) without issues not shown.\n\n", clean)
	}
	if len(report.Pages) == 0 {
		sb.WriteString("  No pages were analysed.\n\n")
	}
}

func (w *SimpleWriter) writePage(sb *strings.Builder, entry *model.PageReportEntry) {
	fmt.Fprintf(sb, "[%3d] %s (%s)\n", entry.Score, entry.Identifier, entry.Tier.Label())
	if entry.Title != "" {
		fmt.Fprintf(sb, "      Title: %s\n", entry.Title)
	}
	if entry.Path != "" {
		fmt.Fprintf(sb, "      Path:  %s\n", entry.Path)
	}
	if entry.ScoreDelta != 0 {
		fmt.Fprintf(sb, "      Trend: %s since last run (was %d)\n", formatDelta(entry.ScoreDelta), entry.PreviousScore)
	}
	if entry.Error != "" {
		fmt.Fprintf(sb, "      Error: %s\n", entry.Error)
	}

	for _, issue := range entry.Issues {
		fmt.Fprintf(sb, "      %s [%s] %s\n", severityIndicator(issue.Severity), issue.SeverityLabel, issue.Message)
		if w.verbose && issue.Recommendation != "" {
			fmt.Fprintf(sb, "          -> %s\n", issue.Recommendation)
		}
	}
	if len(entry.Issues) == 0 {
		sb.WriteString("      No issues found.\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Scores start at 100 and lose weighted points per issue severity.\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// severityIndicator returns a visual marker for the severity.
func severityIndicator(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "!!!"
	case model.SeveritySerious:
		return " !!"
	case model.SeverityModerate:
		return "  !"
	default:
		return "  -"
	}
}

// formatDelta renders a signed score change.
func formatDelta(d int) string {
	switch {
	case d > 0:
		return fmt.Sprintf("+%d", d)
	case d < 0:
		return fmt.Sprintf("%d", d)
	default:
		return "±0"
	}
}

func centered(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
