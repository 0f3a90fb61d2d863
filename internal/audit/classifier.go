package audit

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/pagescore/internal/model"
)

// Classification is the result of classifying free issue text.
type Classification struct {
	Kind           model.IssueKind
	Severity       model.Severity
	Recommendation string
}

// textRule matches when every group has at least one keyword in the text.
// Keywords match whole words only, so "thin" does not match "nothing".
type textRule struct {
	kind   model.IssueKind
	groups [][]string
}

// textRules are tried in order; the first match wins. More specific rules
// precede the general rule for the same subject.
var textRules = []textRule{
	{model.IssueTitleMissing, [][]string{{"title"}, {"missing", "no title", "empty", "add a title"}}},
	{model.IssueTitleLength, [][]string{{"title"}}},
	{model.IssueDescriptionMissing, [][]string{{"description"}, {"missing", "no meta description", "no description", "empty", "add a meta description", "add a description"}}},
	{model.IssueDescriptionLength, [][]string{{"description"}}},
	{model.IssueHeadingMultiple, [][]string{{"heading", "headings", "h1"}, {"multiple", "more than one"}}},
	{model.IssueHeadingMissing, [][]string{{"heading", "headings", "h1"}}},
	{model.IssueContentThin, [][]string{{"thin"}}},
	{model.IssueContentShort, [][]string{{"word count", "could be longer", "words"}}},
	{model.IssueCanonicalNotRendered, [][]string{{"canonical"}, {"not rendered", "but not"}}},
	{model.IssueCanonicalMissing, [][]string{{"canonical"}}},
	{model.IssueOpenGraphMissing, [][]string{{"open graph", "og:", "social"}}},
	{model.IssueStructuredDataMissing, [][]string{{"structured data", "schema", "json-ld"}}},
	{model.IssueMissingAlt, [][]string{{"alt text", "alt attribute", "alt="}}},
	{model.IssueInternalLinks, [][]string{{"internal link", "internal links"}}},
	{model.IssueNoindex, [][]string{{"noindex", "indexing"}}},
}

func (r textRule) matches(lower string) bool {
	for _, group := range r.groups {
		found := false
		for _, kw := range group {
			if containsWord(lower, kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// containsWord reports whether kw occurs in s without a letter or digit
// directly before or after it. Keyword edges that are punctuation, such as
// the colon in "og:", need no boundary on that side.
func containsWord(s, kw string) bool {
	for offset := 0; offset <= len(s)-len(kw); {
		i := strings.Index(s[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(kw)
		if boundaryBefore(s, start, kw) && boundaryAfter(s, end, kw) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(s string, start int, kw string) bool {
	first, _ := utf8.DecodeRuneInString(kw)
	if !isWordRune(first) || start == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:start])
	return !isWordRune(prev)
}

func boundaryAfter(s string, end int, kw string) bool {
	last, _ := utf8.DecodeLastRuneInString(kw)
	if !isWordRune(last) || end == len(s) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(s[end:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ClassifyText maps free issue text to a kind, severity and recommendation
// using case-insensitive whole-word keyword matching. It is total: text
// that matches no rule is IssueUnknown with minor severity and a generic
// recommendation.
func ClassifyText(text string) Classification {
	lower := strings.ToLower(text)
	kind := model.IssueUnknown
	for _, rule := range textRules {
		if rule.matches(lower) {
			kind = rule.kind
			break
		}
	}
	info := model.GetIssueInfo(kind)
	return Classification{
		Kind:           kind,
		Severity:       info.Severity,
		Recommendation: info.Recommendation,
	}
}

// Annotate turns stored issue text into issues, classifying each message.
func Annotate(texts []string) []model.Issue {
	issues := make([]model.Issue, 0, len(texts))
	for _, text := range texts {
		c := ClassifyText(text)
		issues = append(issues, model.Issue{
			Kind:           c.Kind,
			Severity:       c.Severity,
			Message:        text,
			Recommendation: c.Recommendation,
		})
	}
	return issues
}
