package pipeline

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nao1215/pagescore/internal/model"
)

// AssignIdentifiers returns a unique, stable identifier for every page.
//
// The base identifier is the slug, else the slugified title, else
// "page-N" with N the 1-based position. Duplicates get "-2", "-3", ...
// appended in first-seen order, skipping suffixes already in use.
func AssignIdentifiers(pages []model.PageRecord) []string {
	ids := make([]string, len(pages))
	used := make(map[string]bool, len(pages))
	for i, page := range pages {
		base := baseIdentifier(page, i)
		id := base
		for n := 2; used[id]; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		used[id] = true
		ids[i] = id
	}
	return ids
}

func baseIdentifier(page model.PageRecord, index int) string {
	if slug := strings.Trim(strings.TrimSpace(page.Slug), "/"); slug != "" {
		return slug
	}
	if slug := Slugify(page.Title); slug != "" {
		return slug
	}
	return fmt.Sprintf("page-%d", index+1)
}

// Slugify lowercases s and replaces every run of characters that are not
// letters or digits with a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
