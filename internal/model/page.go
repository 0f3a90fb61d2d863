package model

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPageTitle is displayed for pages stored without a title.
	DefaultPageTitle = "Untitled"

	// DefaultTemplate is used for pages stored without a template identifier.
	DefaultTemplate = "default"
)

// PageRecord is a content page as exported from the content store.
// It is read-only to the analysis engine.
type PageRecord struct {
	// ID is the optional numeric identifier assigned by the content store.
	ID *int64 `json:"id,omitempty" yaml:"id,omitempty"`

	// Slug is the URL path segment of the page. Empty for the index page.
	Slug string `json:"slug" yaml:"slug"`

	// Title is the editorial title of the page.
	Title string `json:"title" yaml:"title"`

	// Template selects the layout used to render the page.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// Content is the raw page body (HTML or Markdown).
	Content string `json:"content" yaml:"content"`

	// Meta holds the optional SEO metadata stored with the page.
	Meta PageMeta `json:"meta" yaml:"meta"`

	// UpdatedAt is the last-modified timestamp, if known.
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`

	// Metrics is an optional precomputed snapshot. When set, rendering and
	// extraction are skipped and the snapshot is evaluated directly.
	Metrics *Metrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// PageMeta holds the optional metadata fields of a page.
// Every field defaults to the empty string, meaning "not declared".
type PageMeta struct {
	MetaTitle       string `json:"metaTitle,omitempty" yaml:"meta_title,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty" yaml:"meta_description,omitempty"`
	CanonicalURL    string `json:"canonicalUrl,omitempty" yaml:"canonical_url,omitempty"`
	OGTitle         string `json:"ogTitle,omitempty" yaml:"og_title,omitempty"`
	OGDescription   string `json:"ogDescription,omitempty" yaml:"og_description,omitempty"`
	OGImage         string `json:"ogImage,omitempty" yaml:"og_image,omitempty"`
}

// DisplayTitle returns the title, or DefaultPageTitle when it is blank.
func (p PageRecord) DisplayTitle() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return DefaultPageTitle
}

// TemplateName returns the template identifier, or DefaultTemplate when blank.
func (p PageRecord) TemplateName() string {
	if t := strings.TrimSpace(p.Template); t != "" {
		return t
	}
	return DefaultTemplate
}

// Path returns the site-relative URL of the page.
// The empty slug and "index" both map to "/".
func (p PageRecord) Path() string {
	slug := strings.Trim(strings.TrimSpace(p.Slug), "/")
	if slug == "" || slug == "index" {
		return "/"
	}
	return "/" + slug
}

// IDString returns the numeric identifier as a string, or "" when unset.
func (p PageRecord) IDString() string {
	if p.ID == nil {
		return ""
	}
	return strconv.FormatInt(*p.ID, 10)
}

// SiteSettings holds site-wide values passed to the renderer.
type SiteSettings struct {
	Name               string `json:"name" yaml:"name"`
	BaseURL            string `json:"baseUrl" yaml:"base_url"`
	DefaultDescription string `json:"defaultDescription,omitempty" yaml:"default_description,omitempty"`
	DefaultImage       string `json:"defaultImage,omitempty" yaml:"default_image,omitempty"`
	Language           string `json:"language,omitempty" yaml:"language,omitempty"`
}

// Menu is a named navigation menu rendered into every page.
type Menu struct {
	Name  string     `json:"name" yaml:"name"`
	Items []MenuItem `json:"items" yaml:"items"`
}

// MenuItem is one entry in a navigation menu.
type MenuItem struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// Metrics is the flat set of structural and metadata signals extracted from
// one rendered page. Lengths are counted in characters, not bytes.
type Metrics struct {
	Title             string `json:"title" yaml:"title"`
	TitleLength       int    `json:"titleLength" yaml:"title_length"`
	Description       string `json:"description" yaml:"description"`
	DescriptionLength int    `json:"descriptionLength" yaml:"description_length"`
	H1Count           int    `json:"h1Count" yaml:"h1_count"`
	WordCount         int    `json:"wordCount" yaml:"word_count"`
	ImageCount        int    `json:"imageCount" yaml:"image_count"`
	MissingAltCount   int    `json:"missingAltCount" yaml:"missing_alt_count"`
	InternalLinks     int    `json:"internalLinks" yaml:"internal_links"`
	ExternalLinks     int    `json:"externalLinks" yaml:"external_links"`

	// HasCanonical is true when a canonical link element was rendered.
	HasCanonical bool `json:"hasCanonical" yaml:"has_canonical"`

	// HasCanonicalSetting is true when the page record declares a canonical URL.
	HasCanonicalSetting bool `json:"hasCanonicalSetting" yaml:"has_canonical_setting"`

	HasStructuredData bool `json:"hasStructuredData" yaml:"has_structured_data"`
	HasOpenGraph      bool `json:"hasOpenGraph" yaml:"has_open_graph"`
	IsNoindex         bool `json:"isNoindex" yaml:"is_noindex"`
}
