package audit

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/pagescore/internal/model"
)

// healthyMetrics returns metrics that trigger no rule.
func healthyMetrics() model.Metrics {
	return model.Metrics{
		Title:             "A well sized page title for testing",
		TitleLength:       35,
		Description:       "description",
		DescriptionLength: 120,
		H1Count:           1,
		WordCount:         500,
		InternalLinks:     4,
		HasCanonical:      true,
		HasOpenGraph:      true,
		HasStructuredData: true,
	}
}

func kindsOf(issues []model.Issue) []model.IssueKind {
	kinds := make([]model.IssueKind, 0, len(issues))
	for _, i := range issues {
		kinds = append(kinds, i.Kind)
	}
	return kinds
}

// TestEvaluateHealthyPage tests that a well-formed page has no issues.
func TestEvaluateHealthyPage(t *testing.T) {
	t.Parallel()

	issues, tally := NewEvaluator(DefaultThresholds()).Evaluate(healthyMetrics())
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
	if tally != (model.ViolationTally{}) {
		t.Errorf("expected empty tally, got %+v", tally)
	}
}

// TestEvaluateMissingTitle tests that only the title rule fires.
func TestEvaluateMissingTitle(t *testing.T) {
	t.Parallel()

	m := healthyMetrics()
	m.Title = ""
	m.TitleLength = 0
	m.InternalLinks = 5
	m.WordCount = 400

	issues, tally := NewEvaluator(DefaultThresholds()).Evaluate(m)
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %v", issues)
	}
	if issues[0].Kind != model.IssueTitleMissing || issues[0].Severity != model.SeverityCritical {
		t.Errorf("unexpected issue %+v", issues[0])
	}
	if issues[0].Message != "Title is missing" {
		t.Errorf("unexpected message %q", issues[0].Message)
	}
	if tally != (model.ViolationTally{Critical: 1, Total: 1}) {
		t.Errorf("unexpected tally %+v", tally)
	}
}

// TestEvaluateRules tests each rule in isolation.
func TestEvaluateRules(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		mutate   func(*model.Metrics)
		kind     model.IssueKind
		severity model.Severity
		message  string
	}{
		{
			name:     "title too short",
			mutate:   func(m *model.Metrics) { m.TitleLength = 29 },
			kind:     model.IssueTitleLength,
			severity: model.SeveritySerious,
			message:  "Title is 29 characters (recommended 30-65)",
		},
		{
			name:     "title too long",
			mutate:   func(m *model.Metrics) { m.TitleLength = 66 },
			kind:     model.IssueTitleLength,
			severity: model.SeveritySerious,
			message:  "Title is 66 characters (recommended 30-65)",
		},
		{
			name:     "description missing",
			mutate:   func(m *model.Metrics) { m.Description, m.DescriptionLength = "", 0 },
			kind:     model.IssueDescriptionMissing,
			severity: model.SeveritySerious,
			message:  "Meta description is missing",
		},
		{
			name:     "description too short",
			mutate:   func(m *model.Metrics) { m.DescriptionLength = 69 },
			kind:     model.IssueDescriptionLength,
			severity: model.SeverityModerate,
			message:  "Meta description is 69 characters (recommended 70-160)",
		},
		{
			name:     "description too long",
			mutate:   func(m *model.Metrics) { m.DescriptionLength = 161 },
			kind:     model.IssueDescriptionLength,
			severity: model.SeverityModerate,
			message:  "Meta description is 161 characters (recommended 70-160)",
		},
		{
			name:     "no heading",
			mutate:   func(m *model.Metrics) { m.H1Count = 0 },
			kind:     model.IssueHeadingMissing,
			severity: model.SeveritySerious,
			message:  "No H1 heading found",
		},
		{
			name:     "multiple headings",
			mutate:   func(m *model.Metrics) { m.H1Count = 3 },
			kind:     model.IssueHeadingMultiple,
			severity: model.SeverityModerate,
			message:  "Multiple H1 headings found (3)",
		},
		{
			name:     "thin content",
			mutate:   func(m *model.Metrics) { m.WordCount = 149 },
			kind:     model.IssueContentThin,
			severity: model.SeveritySerious,
			message:  "Content is too thin (149 words, at least 150 recommended)",
		},
		{
			name:     "short content lower bound",
			mutate:   func(m *model.Metrics) { m.WordCount = 150 },
			kind:     model.IssueContentShort,
			severity: model.SeverityModerate,
			message:  "Content could be longer (150 words, 300+ recommended)",
		},
		{
			name:     "short content upper bound",
			mutate:   func(m *model.Metrics) { m.WordCount = 299 },
			kind:     model.IssueContentShort,
			severity: model.SeverityModerate,
			message:  "Content could be longer (299 words, 300+ recommended)",
		},
		{
			name:     "few internal links",
			mutate:   func(m *model.Metrics) { m.InternalLinks = 2 },
			kind:     model.IssueInternalLinks,
			severity: model.SeverityModerate,
			message:  "Add more internal links (2 found, at least 3 recommended)",
		},
		{
			name:     "one image missing alt",
			mutate:   func(m *model.Metrics) { m.MissingAltCount = 1 },
			kind:     model.IssueMissingAlt,
			severity: model.SeverityModerate,
			message:  "1 image is missing alt text",
		},
		{
			name:     "three images missing alt",
			mutate:   func(m *model.Metrics) { m.MissingAltCount = 3 },
			kind:     model.IssueMissingAlt,
			severity: model.SeverityModerate,
			message:  "3 images are missing alt text",
		},
		{
			name:     "canonical never declared",
			mutate:   func(m *model.Metrics) { m.HasCanonical = false },
			kind:     model.IssueCanonicalMissing,
			severity: model.SeverityModerate,
			message:  "Canonical link is missing",
		},
		{
			name: "canonical declared but not rendered",
			mutate: func(m *model.Metrics) {
				m.HasCanonical = false
				m.HasCanonicalSetting = true
			},
			kind:     model.IssueCanonicalNotRendered,
			severity: model.SeverityModerate,
			message:  "Canonical URL is set in page settings but not rendered",
		},
		{
			name:     "open graph missing",
			mutate:   func(m *model.Metrics) { m.HasOpenGraph = false },
			kind:     model.IssueOpenGraphMissing,
			severity: model.SeverityMinor,
			message:  "Missing Open Graph social preview tags",
		},
		{
			name:     "structured data missing",
			mutate:   func(m *model.Metrics) { m.HasStructuredData = false },
			kind:     model.IssueStructuredDataMissing,
			severity: model.SeverityMinor,
			message:  "Missing structured data (JSON-LD)",
		},
		{
			name:     "noindex present",
			mutate:   func(m *model.Metrics) { m.IsNoindex = true },
			kind:     model.IssueNoindex,
			severity: model.SeverityCritical,
			message:  "Page is marked noindex, indexing blocked",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := healthyMetrics()
			tc.mutate(&m)

			issues, tally := NewEvaluator(DefaultThresholds()).Evaluate(m)
			if len(issues) != 1 {
				t.Fatalf("expected one issue, got %v", issues)
			}
			got := issues[0]
			if got.Kind != tc.kind || got.Severity != tc.severity || got.Message != tc.message {
				t.Errorf("got %+v, expected kind=%s severity=%s message=%q", got, tc.kind, tc.severity, tc.message)
			}
			if tally.Total != 1 || tally.Count(tc.severity) != 1 {
				t.Errorf("unexpected tally %+v", tally)
			}
		})
	}
}

// TestEvaluateOrder tests that issues follow rule order when many fire.
func TestEvaluateOrder(t *testing.T) {
	t.Parallel()

	issues, tally := NewEvaluator(DefaultThresholds()).Evaluate(model.Metrics{
		MissingAltCount: 2,
		IsNoindex:       true,
	})

	expected := []model.IssueKind{
		model.IssueTitleMissing,
		model.IssueDescriptionMissing,
		model.IssueHeadingMissing,
		model.IssueContentThin,
		model.IssueInternalLinks,
		model.IssueMissingAlt,
		model.IssueCanonicalMissing,
		model.IssueOpenGraphMissing,
		model.IssueStructuredDataMissing,
		model.IssueNoindex,
	}
	if got := kindsOf(issues); !reflect.DeepEqual(got, expected) {
		t.Errorf("got order %v, expected %v", got, expected)
	}

	want := model.ViolationTally{Critical: 2, Serious: 3, Moderate: 3, Minor: 2, Total: 10}
	if tally != want {
		t.Errorf("got tally %+v, expected %+v", tally, want)
	}
	if tally.Total != len(issues) {
		t.Errorf("tally total %d != issue count %d", tally.Total, len(issues))
	}
}

// TestEvaluateIdempotent tests that evaluating twice gives identical output.
func TestEvaluateIdempotent(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(DefaultThresholds())
	m := model.Metrics{Title: "x", TitleLength: 1, WordCount: 200, H1Count: 2}
	a, ta := e.Evaluate(m)
	b, tb := e.Evaluate(m)
	if !reflect.DeepEqual(a, b) || ta != tb {
		t.Error("evaluation is not idempotent")
	}
}

// TestEvaluateCustomThresholds tests that thresholds change the limits.
func TestEvaluateCustomThresholds(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()
	th.TitleMin = 10
	th.TitleMax = 20
	th.MinInternalLinks = 0

	m := healthyMetrics()
	m.TitleLength = 35
	m.InternalLinks = 0

	issues, _ := NewEvaluator(th).Evaluate(m)
	if len(issues) != 1 || issues[0].Message != "Title is 35 characters (recommended 10-20)" {
		t.Errorf("unexpected issues %v", issues)
	}
}

// TestEvaluateRecommendationsFollowThresholds tests that advice never quotes
// a default limit that custom thresholds have replaced.
func TestEvaluateRecommendationsFollowThresholds(t *testing.T) {
	t.Parallel()

	th := Thresholds{
		TitleMin: 5, TitleMax: 10,
		DescriptionMin: 20, DescriptionMax: 40,
		ThinWordCount: 50, ShortWordCount: 80,
		MinInternalLinks: 6,
	}
	inputs := []model.Metrics{
		{},
		{Title: "long title here", TitleLength: 15, Description: "d", DescriptionLength: 2, H1Count: 1, WordCount: 60, InternalLinks: 1},
	}

	defaults := []string{"30", "65", "70", "160", "150", "300", "three"}
	for _, m := range inputs {
		issues, _ := NewEvaluator(th).Evaluate(m)
		for _, issue := range issues {
			for _, d := range defaults {
				if strings.Contains(issue.Recommendation, d) {
					t.Errorf("%s recommendation %q quotes default %q", issue.Kind, issue.Recommendation, d)
				}
			}
		}
	}
}
