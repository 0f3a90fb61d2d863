package extract

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// textPolicy strips every tag. Script and style bodies are dropped by
// bluemonday itself; stripped tags become spaces so words do not merge.
var textPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

// TextWordCount counts words in markup without building a document tree.
// It is the fallback when structural parsing fails.
func TextWordCount(markup string) int {
	if strings.TrimSpace(markup) == "" {
		return 0
	}
	text := html.UnescapeString(textPolicy.Sanitize(markup))
	return countWords(text)
}

// CharLength returns the number of characters in s after trimming and
// NFC normalisation.
func CharLength(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(strings.TrimSpace(s)))
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

// collapseSpace trims s and replaces internal whitespace runs with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
