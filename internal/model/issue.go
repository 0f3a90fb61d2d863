package model

// Issue is one deficiency found on a page.
// Kind drives classification; Message is for display only.
type Issue struct {
	Kind           IssueKind `json:"kind"`
	Severity       Severity  `json:"severity"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation"`
}

// NewIssue creates an issue of the given kind, filling severity and
// recommendation from the issue mapping.
func NewIssue(kind IssueKind, message string) Issue {
	info := GetIssueInfo(kind)
	return Issue{
		Kind:           kind,
		Severity:       info.Severity,
		Message:        message,
		Recommendation: info.Recommendation,
	}
}

// ViolationTally counts issues per severity.
// Total always equals the sum of the per-severity counts when built via Add.
type ViolationTally struct {
	Critical int `json:"critical"`
	Serious  int `json:"serious"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
	Total    int `json:"total"`
}

// Add records one issue of the given severity.
// Unknown severities count as minor so that Total stays consistent.
func (t *ViolationTally) Add(s Severity) {
	switch s {
	case SeverityCritical:
		t.Critical++
	case SeveritySerious:
		t.Serious++
	case SeverityModerate:
		t.Moderate++
	default:
		t.Minor++
	}
	t.Total++
}

// Warnings returns the number of moderate and minor issues.
func (t ViolationTally) Warnings() int {
	return t.Moderate + t.Minor
}

// Count returns the number of issues recorded for a severity.
func (t ViolationTally) Count(s Severity) int {
	switch s {
	case SeverityCritical:
		return t.Critical
	case SeveritySerious:
		return t.Serious
	case SeverityModerate:
		return t.Moderate
	case SeverityMinor:
		return t.Minor
	default:
		return 0
	}
}

// TallyOf builds a tally from a list of issues.
func TallyOf(issues []Issue) ViolationTally {
	var t ViolationTally
	for _, issue := range issues {
		t.Add(issue.Severity)
	}
	return t
}
