package model

import (
	"testing"
	"time"
)

// TestViolationTallyAdd tests that Total tracks the per-severity counts.
func TestViolationTallyAdd(t *testing.T) {
	t.Parallel()

	var tally ViolationTally
	for _, s := range []Severity{SeverityCritical, SeverityModerate, SeverityModerate, SeverityMinor, Severity(42)} {
		tally.Add(s)
	}

	if tally.Critical != 1 || tally.Moderate != 2 || tally.Minor != 2 || tally.Serious != 0 {
		t.Errorf("unexpected tally %+v", tally)
	}
	if tally.Total != tally.Critical+tally.Serious+tally.Moderate+tally.Minor {
		t.Errorf("total %d does not equal sum of tiers", tally.Total)
	}
	if tally.Warnings() != 4 {
		t.Errorf("Warnings() = %d, expected 4", tally.Warnings())
	}
	if tally.Count(SeverityModerate) != 2 {
		t.Errorf("Count(moderate) = %d, expected 2", tally.Count(SeverityModerate))
	}
}

// TestTallyOf tests building a tally from issues.
func TestTallyOf(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		NewIssue(IssueTitleMissing, "Title is missing"),
		NewIssue(IssueOpenGraphMissing, "Missing Open Graph social preview tags"),
	}
	tally := TallyOf(issues)
	if tally.Total != len(issues) {
		t.Errorf("Total = %d, expected %d", tally.Total, len(issues))
	}
	if tally.Critical != 1 || tally.Minor != 1 {
		t.Errorf("unexpected tally %+v", tally)
	}
}

// TestNewIssue tests that issues take severity from their kind.
func TestNewIssue(t *testing.T) {
	t.Parallel()

	issue := NewIssue(IssueNoindex, "Page is marked noindex, indexing blocked")
	if issue.Severity != SeverityCritical {
		t.Errorf("got %v, expected critical", issue.Severity)
	}
	if issue.Recommendation == "" {
		t.Error("expected recommendation to be filled")
	}
}

// TestOptimizationTier tests the tier presentation helpers.
func TestOptimizationTier(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		tier   OptimizationTier
		label  string
		filter string
		badge  string
	}{
		{TierOptimised, "Optimised", "optimized", "badge-success"},
		{TierNeedsImprovement, "Needs Improvement", "needs-work", "badge-warning"},
		{TierCritical, "Critical", "critical", "badge-danger"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.tier.String(), func(t *testing.T) {
			t.Parallel()
			if tc.tier.Label() != tc.label {
				t.Errorf("Label() = %q, expected %q", tc.tier.Label(), tc.label)
			}
			if tc.tier.FilterKey() != tc.filter {
				t.Errorf("FilterKey() = %q, expected %q", tc.tier.FilterKey(), tc.filter)
			}
			if tc.tier.BadgeClass() != tc.badge {
				t.Errorf("BadgeClass() = %q, expected %q", tc.tier.BadgeClass(), tc.badge)
			}

			for _, name := range []string{tc.tier.String(), tc.filter} {
				parsed, err := ParseOptimizationTier(name)
				if err != nil || parsed != tc.tier {
					t.Errorf("ParseOptimizationTier(%q) = %v, %v", name, parsed, err)
				}
			}
		})
	}

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		var tier OptimizationTier
		if err := tier.UnmarshalText([]byte("excellent")); err == nil {
			t.Error("expected error for unknown tier")
		}
	})
}

// TestReportIndexPages tests that PageMap points into Pages.
func TestReportIndexPages(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewReport("run", now)
	r.Pages = append(r.Pages, PageReportEntry{Identifier: "a", Score: 10}, PageReportEntry{Identifier: "b", Score: 20})
	r.IndexPages()

	if len(r.PageMap) != 2 {
		t.Fatalf("expected 2 map entries, got %d", len(r.PageMap))
	}
	entry := r.Entry("b")
	if entry == nil || entry.Score != 20 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	entry.Score = 30
	if r.Pages[1].Score != 30 {
		t.Error("PageMap entry does not alias Pages")
	}
	if r.Entry("missing") != nil {
		t.Error("expected nil for unknown identifier")
	}
	if !r.Stats.LastScan.Equal(now) {
		t.Errorf("LastScan = %v, expected %v", r.Stats.LastScan, now)
	}
}

// TestIssueDetail tests display fields of an issue.
func TestIssueDetail(t *testing.T) {
	t.Parallel()

	d := NewIssueDetail(NewIssue(IssueHeadingMissing, "No H1 heading found"))
	if d.SeverityLabel != "Serious" || d.BadgeClass != "badge-warning" {
		t.Errorf("unexpected detail %+v", d)
	}
}
