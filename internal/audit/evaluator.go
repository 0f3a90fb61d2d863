package audit

import (
	"fmt"

	"github.com/nao1215/pagescore/internal/model"
)

// Default rule thresholds.
const (
	DefaultTitleMin         = 30
	DefaultTitleMax         = 65
	DefaultDescriptionMin   = 70
	DefaultDescriptionMax   = 160
	DefaultThinWordCount    = 150
	DefaultShortWordCount   = 300
	DefaultMinInternalLinks = 3
)

// Thresholds holds the numeric limits used by the rule set.
// Lengths are inclusive bounds in characters.
type Thresholds struct {
	TitleMin         int `yaml:"title_min" json:"titleMin"`
	TitleMax         int `yaml:"title_max" json:"titleMax"`
	DescriptionMin   int `yaml:"description_min" json:"descriptionMin"`
	DescriptionMax   int `yaml:"description_max" json:"descriptionMax"`
	ThinWordCount    int `yaml:"thin_word_count" json:"thinWordCount"`
	ShortWordCount   int `yaml:"short_word_count" json:"shortWordCount"`
	MinInternalLinks int `yaml:"min_internal_links" json:"minInternalLinks"`
}

// DefaultThresholds returns the canonical thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TitleMin:         DefaultTitleMin,
		TitleMax:         DefaultTitleMax,
		DescriptionMin:   DefaultDescriptionMin,
		DescriptionMax:   DefaultDescriptionMax,
		ThinWordCount:    DefaultThinWordCount,
		ShortWordCount:   DefaultShortWordCount,
		MinInternalLinks: DefaultMinInternalLinks,
	}
}

// Evaluator applies the rule set to a metrics record.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an Evaluator with the given thresholds.
func NewEvaluator(thresholds Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Thresholds returns the thresholds in use.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate returns the issues found in m, in rule order, and their tally.
// The tally's Total always equals len(issues).
func (e *Evaluator) Evaluate(m model.Metrics) ([]model.Issue, model.ViolationTally) {
	th := e.thresholds
	issues := make([]model.Issue, 0)
	add := func(kind model.IssueKind, format string, args ...any) {
		issues = append(issues, model.NewIssue(kind, fmt.Sprintf(format, args...)))
	}

	switch {
	case m.Title == "":
		add(model.IssueTitleMissing, "Title is missing")
	case m.TitleLength < th.TitleMin || m.TitleLength > th.TitleMax:
		add(model.IssueTitleLength, "Title is %d characters (recommended %d-%d)",
			m.TitleLength, th.TitleMin, th.TitleMax)
	}

	switch {
	case m.Description == "":
		add(model.IssueDescriptionMissing, "Meta description is missing")
	case m.DescriptionLength < th.DescriptionMin || m.DescriptionLength > th.DescriptionMax:
		add(model.IssueDescriptionLength, "Meta description is %d characters (recommended %d-%d)",
			m.DescriptionLength, th.DescriptionMin, th.DescriptionMax)
	}

	switch {
	case m.H1Count == 0:
		add(model.IssueHeadingMissing, "No H1 heading found")
	case m.H1Count > 1:
		add(model.IssueHeadingMultiple, "Multiple H1 headings found (%d)", m.H1Count)
	}

	switch {
	case m.WordCount < th.ThinWordCount:
		add(model.IssueContentThin, "Content is too thin (%d words, at least %d recommended)",
			m.WordCount, th.ThinWordCount)
	case m.WordCount < th.ShortWordCount:
		add(model.IssueContentShort, "Content could be longer (%d words, %d+ recommended)",
			m.WordCount, th.ShortWordCount)
	}

	if m.InternalLinks < th.MinInternalLinks {
		add(model.IssueInternalLinks, "Add more internal links (%d found, at least %d recommended)",
			m.InternalLinks, th.MinInternalLinks)
	}

	if m.MissingAltCount > 0 {
		add(model.IssueMissingAlt, "%s", missingAltMessage(m.MissingAltCount))
	}

	if !m.HasCanonical {
		if m.HasCanonicalSetting {
			add(model.IssueCanonicalNotRendered, "Canonical URL is set in page settings but not rendered")
		} else {
			add(model.IssueCanonicalMissing, "Canonical link is missing")
		}
	}

	if !m.HasOpenGraph {
		add(model.IssueOpenGraphMissing, "Missing Open Graph social preview tags")
	}

	if !m.HasStructuredData {
		add(model.IssueStructuredDataMissing, "Missing structured data (JSON-LD)")
	}

	if m.IsNoindex {
		add(model.IssueNoindex, "Page is marked noindex, indexing blocked")
	}

	return issues, model.TallyOf(issues)
}

func missingAltMessage(n int) string {
	if n == 1 {
		return "1 image is missing alt text"
	}
	return fmt.Sprintf("%d images are missing alt text", n)
}
