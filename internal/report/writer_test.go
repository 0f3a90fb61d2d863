package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/pagescore/internal/model"
)

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// createTestReport creates a report with one clean, one weak and one failing page.
func createTestReport() *model.Report {
	report := model.NewReport("run-42", testTime)

	weakIssues := []model.Issue{
		model.NewIssue(model.IssueContentThin, "Content is thin (12 words)"),
		model.NewIssue(model.IssueTitleMissing, "Missing title tag"),
		model.NewIssue(model.IssueMissingAlt, "2 images missing alt text"),
	}
	details := make([]model.IssueDetail, len(weakIssues))
	for i, issue := range weakIssues {
		details[i] = model.NewIssueDetail(issue)
	}

	report.Pages = []model.PageReportEntry{
		{
			Identifier: "home", Title: "Home", Path: "/", Score: 96,
			Tier: model.TierOptimised, Issues: []model.IssueDetail{},
		},
		{
			Identifier: "blog-post", Title: "Blog Post", Path: "/blog-post", Score: 48,
			PreviousScore: 60, ScoreDelta: -12,
			Tier: model.TierCritical, Tally: model.TallyOf(weakIssues), Warnings: 1,
			Issues: details,
		},
		{
			Identifier: "page-3", Score: 70, Tier: model.TierNeedsImprovement,
			Issues: []model.IssueDetail{}, Error: "render: template exploded",
		},
	}
	report.IndexPages()
	report.Stats = model.ReportAggregate{
		TotalPages:         3,
		AverageScore:       71,
		CriticalIssueCount: 1,
		TotalIssueCount:    3,
		OptimizedPageCount: 1,
		NeedsWorkCount:     1,
		CriticalPageCount:  1,
		FilterCounts:       model.FilterCounts{All: 3, Critical: 1, NeedsWork: 1, Optimized: 1},
		LastScan:           testTime,
	}
	return report
}

// createTestTrend creates a three-run history, newest first.
func createTestTrend() *Trend {
	return &Trend{
		Identifier: "blog-post",
		Points: []TrendPoint{
			{
				RunID: "run-3", ScannedAt: testTime, Score: 48, Tier: model.TierCritical,
				Tally:  model.ViolationTally{Critical: 1, Total: 1},
				Issues: []model.Issue{model.NewIssue(model.IssueTitleMissing, "Missing title tag")},
			},
			{RunID: "run-2", ScannedAt: testTime.Add(-24 * time.Hour), Score: 60, Tier: model.TierNeedsImprovement},
			{RunID: "run-1", ScannedAt: testTime.Add(-48 * time.Hour), Score: 60, Tier: model.TierNeedsImprovement},
		},
	}
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"PAGESCORE REPORT",
			"run-42",
			"2026-03-14 09:30:00 UTC",
			"Average Score:     71",
			"OPTIMISED:         1",
			"CRITICAL:          1",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists pages with issues and hides clean pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[ 48] blog-post (Critical)") {
			t.Error("expected weak page line")
		}
		if !strings.Contains(output, "Trend: -12 since last run (was 60)") {
			t.Error("expected score trend line")
		}
		if !strings.Contains(output, "!!! [Critical] Missing title tag") {
			t.Error("expected critical indicator")
		}
		if !strings.Contains(output, "Error: render: template exploded") {
			t.Error("expected failing page error")
		}
		if strings.Contains(output, "[ 96] home") {
			t.Error("clean page should be hidden by default")
		}
		if !strings.Contains(output, "1 page(s) without issues not shown.") {
			t.Error("expected hidden page count")
		}
		if strings.Contains(output, "->") {
			t.Error("recommendations should only appear in verbose mode")
		}
	})

	t.Run("show empty lists clean pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[ 96] home (Optimised)") {
			t.Error("expected clean page to be listed")
		}
		if strings.Contains(output, "not shown") {
			t.Error("no pages should be hidden")
		}
	})

	t.Run("verbose adds recommendations", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rec := model.GetIssueInfo(model.IssueTitleMissing).Recommendation
		if !strings.Contains(buf.String(), "-> "+rec) {
			t.Errorf("expected recommendation %q", rec)
		}
	})

	t.Run("empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(model.NewReport("empty", testTime)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No pages were analysed.") {
			t.Error("expected empty report message")
		}
	})
}

// TestSimpleWriterSeverityIndicators tests severity indicators for all levels.
func TestSimpleWriterSeverityIndicators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity model.Severity
		expected string
	}{
		{model.SeverityCritical, "!!!"},
		{model.SeveritySerious, " !!"},
		{model.SeverityModerate, "  !"},
		{model.SeverityMinor, "  -"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.severity.String(), func(t *testing.T) {
			t.Parallel()

			if got := severityIndicator(tt.severity); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestSimpleWriterTrend tests the text history output.
func TestSimpleWriterTrend(t *testing.T) {
	t.Parallel()

	t.Run("writes runs with deltas", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).WriteTrend(createTestTrend()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"PAGESCORE HISTORY", "Page:           blog-post", "Runs:           3", "-12", "±0", "(run-1)", "Missing title tag"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("no runs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteTrend(&Trend{Identifier: "ghost"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No stored runs for this page.") {
			t.Error("expected empty history message")
		}
	})
}

// TestTrendDelta tests score changes between consecutive runs.
func TestTrendDelta(t *testing.T) {
	t.Parallel()

	trend := createTestTrend()
	tests := []struct {
		index    int
		expected int
	}{
		{0, -12},
		{1, 0},
		{2, 0},
		{-1, 0},
		{5, 0},
	}
	for _, tt := range tests {
		if got := trend.Delta(tt.index); got != tt.expected {
			t.Errorf("Delta(%d) = %d, expected %d", tt.index, got, tt.expected)
		}
	}
}

// TestJSONWriter tests the dashboard JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes compact JSON with trailing newline", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.HasSuffix(output, "}\n") {
			t.Error("expected trailing newline")
		}
		if strings.Count(output, "\n") != 1 {
			t.Error("expected compact single-line JSON")
		}
	})

	t.Run("round-trips the report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.Report
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if parsed.RunID != "run-42" || len(parsed.Pages) != 3 {
			t.Fatalf("unexpected report %+v", parsed)
		}
		weak := parsed.PageMap["blog-post"]
		if weak == nil || weak.Tier != model.TierCritical || weak.ScoreDelta != -12 {
			t.Errorf("unexpected page map entry %+v", weak)
		}
		if weak.Issues[1].Severity != model.SeverityCritical {
			t.Errorf("expected severity to round-trip, got %v", weak.Issues[1].Severity)
		}
	})

	t.Run("uses dashboard keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, key := range []string{`"runId"`, `"pageMap"`, `"filterCounts"`, `"scoreDelta"`, `"severity":"critical"`, `"tier":"optimised"`} {
			if !strings.Contains(output, key) {
				t.Errorf("expected %s in JSON", key)
			}
		}
	})

	t.Run("writes trend", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteTrend(createTestTrend()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed Trend
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if parsed.Identifier != "blog-post" || len(parsed.Points) != 3 || parsed.Points[0].Score != 48 {
			t.Errorf("unexpected trend %+v", parsed)
		}
	})
}

// TestWithIndent tests indentation options.
func TestWithIndent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     []JSONWriterOption
		expected string
	}{
		{"pretty print", []JSONWriterOption{WithPrettyPrint()}, "\n  \"runId\""},
		{"tabs", []JSONWriterOption{WithIndent("", "\t")}, "\n\t\"runId\""},
		{"prefix", []JSONWriterOption{WithIndent("//", " ")}, "\n// \"runId\""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if _, err := NewJSONWriter(&buf, tt.opts...).Write(createTestReport()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %q in output", tt.expected)
			}
		})
	}
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, report *model.Report) string {
		t.Helper()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return buf.String()
	}

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestReport())
		for _, want := range []string{"# PageScore Report", "`run-42`", "## Summary", "Optimised", "## Pages", "## Issues"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("includes pie chart", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestReport())
		if !strings.Contains(output, "```mermaid") || !strings.Contains(output, "pie") {
			t.Error("expected mermaid pie chart")
		}
		if !strings.Contains(output, "Page Tier Distribution") {
			t.Error("expected chart title")
		}
	})

	t.Run("cautions on critical issues", func(t *testing.T) {
		t.Parallel()

		if output := write(t, createTestReport()); !strings.Contains(output, "[!CAUTION]") {
			t.Error("expected CAUTION alert")
		}
	})

	t.Run("tips when everything is optimised", func(t *testing.T) {
		t.Parallel()

		report := model.NewReport("clean", testTime)
		report.Pages = []model.PageReportEntry{{Identifier: "home", Score: 100, Tier: model.TierOptimised}}
		report.IndexPages()
		report.Stats = model.ReportAggregate{TotalPages: 1, AverageScore: 100, OptimizedPageCount: 1}

		output := write(t, report)
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected TIP alert")
		}
		if !strings.Contains(output, "No issues found.") {
			t.Error("expected no issues message")
		}
	})

	t.Run("notes empty report", func(t *testing.T) {
		t.Parallel()

		output := write(t, model.NewReport("empty", testTime))
		if !strings.Contains(output, "[!NOTE]") {
			t.Error("expected NOTE alert")
		}
		if strings.Contains(output, "```mermaid") {
			t.Error("empty report should not have a chart")
		}
	})

	t.Run("writes per-page issue tables", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestReport())
		if !strings.Contains(output, "### blog-post (48)") {
			t.Error("expected page issue heading")
		}
		if strings.Contains(output, "### home") {
			t.Error("clean page should have no issue section")
		}
		if !strings.Contains(output, "[!WARNING]") || !strings.Contains(output, "template exploded") {
			t.Error("expected analysis failure warning")
		}
		critical := strings.Index(output, "Missing title tag")
		serious := strings.Index(output, "Content is thin")
		if critical < 0 || serious < 0 || critical > serious {
			t.Error("expected issues ordered by severity")
		}
	})

	t.Run("writes trend", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteTrend(createTestTrend()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"# PageScore History: blog-post", "`run-3`", "-12", "## Latest Issues", "Missing title tag"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("writes empty trend", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteTrend(&Trend{Identifier: "ghost"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No stored runs for this page.") {
			t.Error("expected empty history note")
		}
	})
}

// TestTruncateString tests rune-safe truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"long string", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"multibyte", "ページスコア報告書", 5, "ペー..."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, expected %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}

// TestJSONWriterKeepsHTML tests that markup in messages is not escaped.
func TestJSONWriterKeepsHTML(t *testing.T) {
	t.Parallel()

	report := model.NewReport("run-html", testTime)
	report.Pages = []model.PageReportEntry{{
		Identifier: "tags", Title: "Tags & <Markup>", Tier: model.TierCritical,
		Issues: []model.IssueDetail{},
	}}
	report.IndexPages()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf).Write(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"Tags & <Markup>"`) {
		t.Errorf("expected literal title in %s", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Error("expected a trailing newline")
	}
}
