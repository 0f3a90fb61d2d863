package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/pagescore/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePagesTable(md, report)
	w.writeIssues(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteTrend outputs the score history of one page in Markdown format.
func (w *MarkdownWriter) WriteTrend(trend *Trend) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("PageScore History: " + trend.Identifier)
	md.PlainText("")

	if len(trend.Points) == 0 {
		md.Note("No stored runs for this page.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(trend.Points))
	for i, p := range trend.Points {
		rows[i] = []string{
			p.ScannedAt.Format(timeLayout),
			"`" + p.RunID + "`",
			strconv.Itoa(p.Score),
			formatDelta(trend.Delta(i)),
			tierBadge(p.Tier),
			strconv.Itoa(p.Tally.Total),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Scanned", "Run", "Score", "Change", "Tier", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")

	latest := trend.Points[0]
	if len(latest.Issues) > 0 {
		md.H2("Latest Issues")
		md.PlainText("")
		items := make([]string, len(latest.Issues))
		for i, issue := range latest.Issues {
			items[i] = severityEmoji(issue.Severity) + " " + issue.Message
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("PageScore Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Generated", report.GeneratedAt.Format(timeLayout)},
			{"Pages Scored", strconv.Itoa(report.Stats.TotalPages)},
			{"Average Score", strconv.Itoa(report.Stats.AverageScore)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the tier breakdown, the tier chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	stats := report.Stats

	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Tier", "Pages"},
		Rows: [][]string{
			{"🟢 Optimised", strconv.Itoa(stats.OptimizedPageCount)},
			{"🟡 Needs Improvement", strconv.Itoa(stats.NeedsWorkCount)},
			{"🔴 Critical", strconv.Itoa(stats.CriticalPageCount)},
			{"**Total**", "**" + strconv.Itoa(stats.TotalPages) + "**"},
		},
	})
	md.PlainText("")

	if stats.TotalPages > 0 {
		w.writePieChart(md, stats)
	}
	w.writeAlert(md, stats)
}

// writePieChart writes a mermaid pie chart of the tier distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, stats model.ReportAggregate) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Tier Distribution"),
		piechart.WithShowData(true),
	)

	if stats.OptimizedPageCount > 0 {
		chart.LabelAndIntValue("Optimised", uint64(stats.OptimizedPageCount))
	}
	if stats.NeedsWorkCount > 0 {
		chart.LabelAndIntValue("Needs Improvement", uint64(stats.NeedsWorkCount))
	}
	if stats.CriticalPageCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(stats.CriticalPageCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, stats model.ReportAggregate) {
	switch {
	case stats.TotalPages == 0:
		md.Note("No pages were analysed.")
	case stats.CriticalIssueCount > 0:
		md.Cautionf(
			"%d critical issue(s) across %d page(s) block indexing or display.",
			stats.CriticalIssueCount, stats.CriticalPageCount,
		)
	case stats.CriticalPageCount > 0:
		md.Warningf("%d page(s) score below 60.", stats.CriticalPageCount)
	case stats.NeedsWorkCount > 0:
		md.Note("Some pages need improvement but none are critical.")
	default:
		md.Tip("Every page is optimised.")
	}
	md.PlainText("")
}

// writePagesTable writes one row per page in report order.
func (w *MarkdownWriter) writePagesTable(md *markdown.Markdown, report *model.Report) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages were analysed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Pages))
	for i := range report.Pages {
		entry := &report.Pages[i]
		rows[i] = []string{
			"`" + entry.Identifier + "`",
			truncateString(entry.Title, 40),
			strconv.Itoa(entry.Score),
			formatDelta(entry.ScoreDelta),
			tierBadge(entry.Tier),
			strconv.Itoa(entry.Tally.Critical),
			strconv.Itoa(entry.Tally.Serious),
			strconv.Itoa(entry.Warnings),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Title", "Score", "Change", "Tier", "Critical", "Serious", "Warnings"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeIssues writes an issue table for every page that has issues.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.Report) {
	md.H2("Issues")
	md.PlainText("")

	written := 0
	for i := range report.Pages {
		entry := &report.Pages[i]
		if len(entry.Issues) == 0 && entry.Error == "" {
			continue
		}
		written++

		md.H3(entry.Identifier + " (" + strconv.Itoa(entry.Score) + ")")
		md.PlainText("")
		if entry.Error != "" {
			md.Warningf("Analysis was incomplete: %s", entry.Error)
			md.PlainText("")
		}
		if len(entry.Issues) == 0 {
			continue
		}

		rows := make([][]string, 0, len(entry.Issues))
		for _, sev := range severityOrder {
			for _, issue := range entry.Issues {
				if issue.Severity != sev {
					continue
				}
				rows = append(rows, []string{
					severityEmoji(issue.Severity) + " " + issue.SeverityLabel,
					truncateString(issue.Message, 60),
					truncateString(issue.Recommendation, 80),
				})
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Severity", "Issue", "Recommendation"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if written == 0 {
		md.PlainText("No issues found.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pagescore](https://github.com/nao1215/pagescore)*")
}

func severityEmoji(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴"
	case model.SeveritySerious:
		return "🟠"
	case model.SeverityModerate:
		return "🟡"
	default:
		return "🔵"
	}
}

func tierBadge(t model.OptimizationTier) string {
	switch t {
	case model.TierOptimised:
		return "🟢 " + t.Label()
	case model.TierNeedsImprovement:
		return "🟡 " + t.Label()
	default:
		return "🔴 " + t.Label()
	}
}

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
