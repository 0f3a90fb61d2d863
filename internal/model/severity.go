package model

import (
	"fmt"
	"strings"
)

// Severity represents how strongly an issue hurts a page's quality.
// Values are ordered so that comparisons and sorting work directly:
// SeverityMinor < SeverityModerate < SeveritySerious < SeverityCritical.
type Severity int

const (
	// SeverityMinor indicates a nice-to-have improvement.
	// Examples: missing Open Graph tags, missing structured data.
	SeverityMinor Severity = iota

	// SeverityModerate indicates an issue that weakens the page but does not
	// block it. Examples: description length, missing alt text.
	SeverityModerate

	// SeveritySerious indicates an issue that noticeably hurts discoverability.
	// Examples: missing description, no H1, thin content.
	SeveritySerious

	// SeverityCritical indicates an issue that breaks indexing or display.
	// Examples: missing title, noindex directive.
	SeverityCritical
)

// String returns the lowercase severity name used in reports and storage.
func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityModerate:
		return "moderate"
	case SeveritySerious:
		return "serious"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Label returns the capitalized severity name shown on the dashboard.
func (s Severity) Label() string {
	switch s {
	case SeverityMinor:
		return "Minor"
	case SeverityModerate:
		return "Moderate"
	case SeveritySerious:
		return "Serious"
	case SeverityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// BadgeClass returns the CSS class the dashboard uses for the severity badge.
func (s Severity) BadgeClass() string {
	switch s {
	case SeverityCritical:
		return "badge-danger"
	case SeveritySerious:
		return "badge-warning"
	case SeverityModerate:
		return "badge-info"
	default:
		return "badge-secondary"
	}
}

// MarshalText encodes the severity as its lowercase name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity name. The alternative four-tier naming
// (high, medium, low) is accepted as an alias of serious, moderate and minor.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical, nil
	case "serious", "high":
		return SeveritySerious, nil
	case "moderate", "medium":
		return SeverityModerate, nil
	case "minor", "low":
		return SeverityMinor, nil
	default:
		return SeverityMinor, fmt.Errorf("unknown severity %q", s)
	}
}

// IssueKind tags an issue with the rule that produced it.
// The tag, not the display message, determines severity and recommendation.
type IssueKind string

// Issue kinds, one per evaluator rule outcome.
const (
	IssueTitleMissing          IssueKind = "title_missing"
	IssueTitleLength           IssueKind = "title_length"
	IssueDescriptionMissing    IssueKind = "description_missing"
	IssueDescriptionLength     IssueKind = "description_length"
	IssueHeadingMissing        IssueKind = "heading_missing"
	IssueHeadingMultiple       IssueKind = "heading_multiple"
	IssueContentThin           IssueKind = "content_thin"
	IssueContentShort          IssueKind = "content_short"
	IssueInternalLinks         IssueKind = "internal_links"
	IssueMissingAlt            IssueKind = "missing_alt"
	IssueCanonicalMissing      IssueKind = "canonical_missing"
	IssueCanonicalNotRendered  IssueKind = "canonical_not_rendered"
	IssueOpenGraphMissing      IssueKind = "open_graph_missing"
	IssueStructuredDataMissing IssueKind = "structured_data_missing"
	IssueNoindex               IssueKind = "noindex"

	// IssueUnknown is used for stored issue text that matches no rule.
	IssueUnknown IssueKind = "unknown"
)

// IssueInfo contains the severity and remediation advice for an issue kind.
type IssueInfo struct {
	Severity       Severity
	Recommendation string
}

// FallbackRecommendation is returned for issues that match no known kind.
const FallbackRecommendation = "Review this recommendation and apply it where it fits the page."

// issueInfoMapping is the single source of truth for issue severities.
var issueInfoMapping = map[IssueKind]IssueInfo{
	// CRITICAL - page cannot be indexed or displayed properly
	IssueTitleMissing: {
		Severity:       SeverityCritical,
		Recommendation: "Add a unique, descriptive <title> within the recommended length.",
	},
	IssueNoindex: {
		Severity:       SeverityCritical,
		Recommendation: "Remove the noindex robots directive unless the page must stay out of search results.",
	},

	// SERIOUS - discoverability noticeably reduced
	IssueTitleLength: {
		Severity:       SeveritySerious,
		Recommendation: "Rewrite the title to fit the recommended length shown in the issue.",
	},
	IssueDescriptionMissing: {
		Severity:       SeveritySerious,
		Recommendation: "Add a meta description that summarizes the page in one or two sentences.",
	},
	IssueHeadingMissing: {
		Severity:       SeveritySerious,
		Recommendation: "Add exactly one H1 heading that states the page topic.",
	},
	IssueContentThin: {
		Severity:       SeveritySerious,
		Recommendation: "Expand the page body with useful content up to the recommended word count.",
	},

	// MODERATE - weakens the page
	IssueDescriptionLength: {
		Severity:       SeverityModerate,
		Recommendation: "Adjust the meta description to the recommended length shown in the issue.",
	},
	IssueHeadingMultiple: {
		Severity:       SeverityModerate,
		Recommendation: "Keep a single H1 and demote the other headings to H2 or lower.",
	},
	IssueContentShort: {
		Severity:       SeverityModerate,
		Recommendation: "Consider growing the content to the recommended word count.",
	},
	IssueInternalLinks: {
		Severity:       SeverityModerate,
		Recommendation: "Link to more related pages on the same site.",
	},
	IssueMissingAlt: {
		Severity:       SeverityModerate,
		Recommendation: "Describe every meaningful image with an alt attribute.",
	},
	IssueCanonicalMissing: {
		Severity:       SeverityModerate,
		Recommendation: "Add a <link rel=\"canonical\"> pointing at the preferred URL.",
	},
	IssueCanonicalNotRendered: {
		Severity:       SeverityModerate,
		Recommendation: "The page declares a canonical URL; make the template render it as <link rel=\"canonical\">.",
	},

	// MINOR - nice to have
	IssueOpenGraphMissing: {
		Severity:       SeverityMinor,
		Recommendation: "Add og:title, og:description and og:image meta tags for social previews.",
	},
	IssueStructuredDataMissing: {
		Severity:       SeverityMinor,
		Recommendation: "Describe the page with a JSON-LD structured data block.",
	},
}

// GetIssueInfo returns the severity and recommendation for an issue kind.
// Unknown kinds return SeverityMinor with FallbackRecommendation.
func GetIssueInfo(kind IssueKind) IssueInfo {
	if info, ok := issueInfoMapping[kind]; ok {
		return info
	}
	return IssueInfo{
		Severity:       SeverityMinor,
		Recommendation: FallbackRecommendation,
	}
}

// GetSeverity returns the severity for an issue kind.
func GetSeverity(kind IssueKind) Severity {
	return GetIssueInfo(kind).Severity
}

// IssueKinds returns every known issue kind, most severe first.
func IssueKinds() []IssueKind {
	return []IssueKind{
		IssueTitleMissing,
		IssueNoindex,
		IssueTitleLength,
		IssueDescriptionMissing,
		IssueHeadingMissing,
		IssueContentThin,
		IssueDescriptionLength,
		IssueHeadingMultiple,
		IssueContentShort,
		IssueInternalLinks,
		IssueMissingAlt,
		IssueCanonicalMissing,
		IssueCanonicalNotRendered,
		IssueOpenGraphMissing,
		IssueStructuredDataMissing,
	}
}
