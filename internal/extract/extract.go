package extract

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/pagescore/internal/model"
)

// HTML element and attribute names used during extraction.
const (
	robotsMetaName     = "robots"
	googlebotMetaName  = "googlebot"
	noindexDirective   = "noindex"
	canonicalRel       = "canonical"
	openGraphPrefix    = "og:"
	structuredDataMIME = "application/ld+json"
)

// strippedElements are removed before counting words.
const strippedElements = "script, style, template, noscript"

// Extractor extracts metrics from rendered markup.
// It is safe for concurrent use.
type Extractor struct {
	logger *slog.Logger

	// parse builds the document tree. The html5 parser recovers from any
	// malformed input, so the text-only path is rarely taken in practice.
	parse func(markup string) (*goquery.Document, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used to report degraded extractions.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		parse:  parseDocument,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses markup and returns its metrics. page supplies fallback
// metadata and the declared canonical setting.
func (e *Extractor) Extract(markup string, page model.PageRecord) model.Metrics {
	doc, err := e.parse(markup)
	var m model.Metrics
	if err != nil {
		e.logger.Debug("structural parse failed, counting text only",
			"slug", page.Slug,
			"error", err,
		)
		m.WordCount = TextWordCount(markup)
	} else {
		m = extractDocument(doc)
	}

	m.HasCanonicalSetting = strings.TrimSpace(page.Meta.CanonicalURL) != ""
	applyFallbacks(&m, page)
	return m
}

// parseDocument builds a goquery document, converting parser panics into errors.
func parseDocument(markup string) (doc *goquery.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("html parser panic: %v", r)
		}
	}()
	return goquery.NewDocumentFromReader(strings.NewReader(markup))
}

func extractDocument(doc *goquery.Document) model.Metrics {
	var m model.Metrics

	m.Title = collapseSpace(doc.Find("title").First().Text())

	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), "description") {
			m.Description = collapseSpace(s.AttrOr("content", ""))
			return false
		}
		return true
	})

	m.H1Count = doc.Find("h1").Length()

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		m.ImageCount++
		if alt, ok := s.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			m.MissingAltCount++
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		switch classifyLink(s.AttrOr("href", "")) {
		case linkInternal:
			m.InternalLinks++
		case linkExternal:
			m.ExternalLinks++
		}
	})

	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if hasRelToken(s.AttrOr("rel", ""), canonicalRel) && strings.TrimSpace(s.AttrOr("href", "")) != "" {
			m.HasCanonical = true
			return false
		}
		return true
	})

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		prop := strings.ToLower(strings.TrimSpace(s.AttrOr("property", "")))
		name := strings.ToLower(strings.TrimSpace(s.AttrOr("name", "")))
		if strings.HasPrefix(prop, openGraphPrefix) || strings.HasPrefix(name, openGraphPrefix) {
			m.HasOpenGraph = true
		}
		if name == robotsMetaName || name == googlebotMetaName {
			if strings.Contains(strings.ToLower(s.AttrOr("content", "")), noindexDirective) {
				m.IsNoindex = true
			}
		}
	})

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
		if typ == structuredDataMIME && strings.TrimSpace(s.Text()) != "" {
			m.HasStructuredData = true
			return false
		}
		return true
	})

	// Word counting mutates the tree, so it runs last.
	doc.Find(strippedElements).Remove()
	m.WordCount = countWords(bodyText(doc))

	return m
}

// applyFallbacks substitutes page record metadata for empty rendered values
// and computes character lengths.
func applyFallbacks(m *model.Metrics, page model.PageRecord) {
	if m.Title == "" {
		m.Title = collapseSpace(page.Meta.MetaTitle)
	}
	if m.Title == "" {
		m.Title = collapseSpace(page.Title)
	}
	if m.Description == "" {
		m.Description = collapseSpace(page.Meta.MetaDescription)
	}
	m.TitleLength = CharLength(m.Title)
	m.DescriptionLength = CharLength(m.Description)
}

type linkClass int

const (
	linkIgnored linkClass = iota
	linkInternal
	linkExternal
)

// classifyLink applies the link rule: empty, fragment-only and javascript:
// targets are ignored; http(s) targets are external; everything else is
// internal.
func classifyLink(href string) linkClass {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return linkIgnored
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") {
		return linkIgnored
	}
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return linkExternal
	}
	return linkInternal
}

func hasRelToken(rel, token string) bool {
	for _, t := range strings.Fields(rel) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// inlineElements do not separate words from their neighbours.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true,
	"code": true, "data": true, "dfn": true, "em": true, "i": true, "kbd": true,
	"mark": true, "q": true, "s": true, "samp": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true, "var": true,
}

// bodyText returns the text of the document body, or of the whole document
// when there is no body. Block-level element boundaries become spaces so that
// adjacent paragraphs do not merge words.
func bodyText(doc *goquery.Document) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		block := n.Type == html.ElementNode && !inlineElements[n.Data]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	for _, n := range root.Nodes {
		walk(n)
	}
	return b.String()
}
