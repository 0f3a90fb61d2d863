package model

import (
	"fmt"
	"time"
)

// OptimizationTier is the coarse three-way bucket used for dashboard filtering.
type OptimizationTier int

const (
	// TierCritical is for pages scoring below 60.
	TierCritical OptimizationTier = iota

	// TierNeedsImprovement is for pages scoring 60 or more that are not optimised.
	TierNeedsImprovement

	// TierOptimised is for pages scoring 90 or more with no critical issue.
	TierOptimised
)

// String returns the machine name of the tier.
func (t OptimizationTier) String() string {
	switch t {
	case TierOptimised:
		return "optimised"
	case TierNeedsImprovement:
		return "needs_improvement"
	case TierCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Label returns the tier name shown on the dashboard.
func (t OptimizationTier) Label() string {
	switch t {
	case TierOptimised:
		return "Optimised"
	case TierNeedsImprovement:
		return "Needs Improvement"
	case TierCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// FilterKey returns the dashboard filter bucket the tier belongs to.
func (t OptimizationTier) FilterKey() string {
	switch t {
	case TierOptimised:
		return "optimized"
	case TierNeedsImprovement:
		return "needs-work"
	default:
		return "critical"
	}
}

// BadgeClass returns the CSS class for the tier badge.
func (t OptimizationTier) BadgeClass() string {
	switch t {
	case TierOptimised:
		return "badge-success"
	case TierNeedsImprovement:
		return "badge-warning"
	default:
		return "badge-danger"
	}
}

// MarshalText encodes the tier as its machine name.
func (t OptimizationTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier from its machine name.
func (t *OptimizationTier) UnmarshalText(text []byte) error {
	tier, err := ParseOptimizationTier(string(text))
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// ParseOptimizationTier parses a tier machine name or filter key.
func ParseOptimizationTier(s string) (OptimizationTier, error) {
	switch s {
	case "optimised", "optimized":
		return TierOptimised, nil
	case "needs_improvement", "needs-work":
		return TierNeedsImprovement, nil
	case "critical":
		return TierCritical, nil
	default:
		return TierCritical, fmt.Errorf("unknown optimization tier %q", s)
	}
}

// PageAnalysis is the working state of one page while it moves through the
// analysis pipeline. Each step reads earlier fields and fills later ones.
type PageAnalysis struct {
	// Index is the zero-based position of the page in the input.
	Index int

	// Page is the input record.
	Page PageRecord

	// Markup is the rendered HTML. Empty when rendering failed.
	Markup string

	// Metrics is filled by extraction, or copied from Page.Metrics.
	Metrics Metrics

	// Issues and Tally are filled by evaluation.
	Issues []Issue
	Tally  ViolationTally

	// Score and Tier are filled by scoring.
	Score int
	Tier  OptimizationTier

	// Errors collects non-fatal dependency failures for this page.
	Errors []string
}

// NewPageAnalysis creates the pipeline state for the page at index.
func NewPageAnalysis(index int, page PageRecord) *PageAnalysis {
	return &PageAnalysis{
		Index:  index,
		Page:   page,
		Issues: make([]Issue, 0),
	}
}

// AddError records a non-fatal failure note.
func (a *PageAnalysis) AddError(msg string) {
	a.Errors = append(a.Errors, msg)
}

// IssueDetail is the display form of one issue, with every presentation
// field precomputed so the dashboard does no classification itself.
type IssueDetail struct {
	Kind           IssueKind `json:"kind"`
	Message        string    `json:"message"`
	Severity       Severity  `json:"severity"`
	SeverityLabel  string    `json:"severityLabel"`
	BadgeClass     string    `json:"badgeClass"`
	Recommendation string    `json:"recommendation"`
}

// NewIssueDetail converts an issue into its display form.
func NewIssueDetail(issue Issue) IssueDetail {
	return IssueDetail{
		Kind:           issue.Kind,
		Message:        issue.Message,
		Severity:       issue.Severity,
		SeverityLabel:  issue.Severity.Label(),
		BadgeClass:     issue.Severity.BadgeClass(),
		Recommendation: issue.Recommendation,
	}
}

// PageReportEntry is the compiled result for one page.
type PageReportEntry struct {
	// Identifier is unique within a report and keys PageMap.
	Identifier string `json:"identifier"`

	ID       *int64 `json:"id,omitempty"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Path     string `json:"path"`
	Template string `json:"template"`

	Score         int `json:"score"`
	PreviousScore int `json:"previousScore"`
	ScoreDelta    int `json:"scoreDelta"`

	Tier       OptimizationTier `json:"tier"`
	TierLabel  string           `json:"tierLabel"`
	FilterKey  string           `json:"filterKey"`
	BadgeClass string           `json:"badgeClass"`

	Tally    ViolationTally `json:"tally"`
	Warnings int            `json:"warnings"`

	LastScanned time.Time  `json:"lastScanned"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`

	Status  string `json:"status"`
	Summary string `json:"summary"`

	// IssuePreview holds the first few issue messages for list views.
	IssuePreview []string `json:"issuePreview"`

	// Issues holds every issue in evaluation order.
	Issues []IssueDetail `json:"issues"`

	Metrics Metrics `json:"metrics"`

	// Error notes a render or resolver failure. Empty when clean.
	Error string `json:"error,omitempty"`
}

// FilterCounts holds the number of pages in each dashboard filter bucket.
// All == Critical + NeedsWork + Optimized for every compiled report.
type FilterCounts struct {
	All       int `json:"all"`
	Critical  int `json:"critical"`
	NeedsWork int `json:"needsWork"`
	Optimized int `json:"optimized"`
}

// ReportAggregate holds fleet-wide statistics.
type ReportAggregate struct {
	TotalPages         int          `json:"totalPages"`
	AverageScore       int          `json:"averageScore"`
	CriticalIssueCount int          `json:"criticalIssueCount"`
	TotalIssueCount    int          `json:"totalIssueCount"`
	OptimizedPageCount int          `json:"optimizedPageCount"`
	NeedsWorkCount     int          `json:"needsWorkCount"`
	CriticalPageCount  int          `json:"criticalPageCount"`
	FilterCounts       FilterCounts `json:"filterCounts"`
	LastScan           time.Time    `json:"lastScan"`
}

// Report is the compiled output of one analysis run.
type Report struct {
	RunID       string                      `json:"runId"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	Pages       []PageReportEntry           `json:"pages"`
	PageMap     map[string]*PageReportEntry `json:"pageMap"`
	Stats       ReportAggregate             `json:"stats"`
}

// NewReport creates an empty report.
func NewReport(runID string, generatedAt time.Time) *Report {
	return &Report{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Pages:       make([]PageReportEntry, 0),
		PageMap:     make(map[string]*PageReportEntry),
		Stats: ReportAggregate{
			LastScan: generatedAt,
		},
	}
}

// Entry returns the entry for an identifier, or nil when absent.
func (r *Report) Entry(identifier string) *PageReportEntry {
	return r.PageMap[identifier]
}

// IndexPages rebuilds PageMap so that it points into Pages.
// It must be called after Pages is final, since appending may reallocate.
func (r *Report) IndexPages() {
	r.PageMap = make(map[string]*PageReportEntry, len(r.Pages))
	for i := range r.Pages {
		r.PageMap[r.Pages[i].Identifier] = &r.Pages[i]
	}
}
