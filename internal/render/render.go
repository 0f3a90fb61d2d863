package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/nao1215/pagescore/internal/model"
)

// RawTemplate is the template name that disables the site shell.
const RawTemplate = "raw"

// DefaultLanguage is used for the html lang attribute when the site has none.
const DefaultLanguage = "en"

const shellTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">
{{- end}}
{{- if .Canonical}}
<link rel="canonical" href="{{.Canonical}}">
{{- end}}
{{- if .OGTitle}}
<meta property="og:title" content="{{.OGTitle}}">
{{- end}}
{{- if .OGDescription}}
<meta property="og:description" content="{{.OGDescription}}">
{{- end}}
{{- if .OGImage}}
<meta property="og:image" content="{{.OGImage}}">
{{- end}}
</head>
<body class="template-{{.Template}}">
{{- range .Menus}}
<nav aria-label="{{.Name}}">
<ul>
{{- range .Items}}
<li><a href="{{.URL}}">{{.Label}}</a></li>
{{- end}}
</ul>
</nav>
{{- end}}
<main>
{{.Body}}
</main>
<footer>{{.SiteName}}</footer>
</body>
</html>
`

// shellData is the view model of shellTemplate.
type shellData struct {
	Lang          string
	Title         string
	Description   string
	Canonical     string
	OGTitle       string
	OGDescription string
	OGImage       string
	Template      string
	Menus         []model.Menu
	Body          template.HTML
	SiteName      string
}

// Renderer renders page records with goldmark and html/template.
// It is safe for concurrent use.
type Renderer struct {
	markdown goldmark.Markdown
	shell    *template.Template
}

// New creates a Renderer.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	return &Renderer{
		markdown: md,
		shell:    template.Must(template.New("shell").Parse(shellTemplate)),
	}
}

// Render returns the full HTML document for page.
func (r *Renderer) Render(ctx context.Context, page model.PageRecord, site model.SiteSettings, menus []model.Menu) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := r.body(page.Content)
	if err != nil {
		return "", fmt.Errorf("render body of %q: %w", page.Slug, err)
	}

	if page.TemplateName() == RawTemplate {
		return body, nil
	}

	var buf bytes.Buffer
	if err := r.shell.Execute(&buf, buildShellData(page, site, menus, body)); err != nil {
		return "", fmt.Errorf("render template %q: %w", page.TemplateName(), err)
	}
	return buf.String(), nil
}

// body returns content as HTML. Content that starts with a tag is used
// as-is; anything else is treated as Markdown.
func (r *Renderer) body(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || strings.HasPrefix(trimmed, "<") {
		return trimmed, nil
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(trimmed), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildShellData(page model.PageRecord, site model.SiteSettings, menus []model.Menu, body string) shellData {
	lang := site.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	title := page.Meta.MetaTitle
	if title == "" {
		title = page.Title
	}
	if site.Name != "" && title != "" {
		title = title + " | " + site.Name
	}

	description := page.Meta.MetaDescription
	if description == "" {
		description = site.DefaultDescription
	}

	ogImage := page.Meta.OGImage
	if ogImage == "" && (page.Meta.OGTitle != "" || page.Meta.OGDescription != "") {
		ogImage = site.DefaultImage
	}

	return shellData{
		Lang:          lang,
		Title:         title,
		Description:   description,
		Canonical:     page.Meta.CanonicalURL,
		OGTitle:       page.Meta.OGTitle,
		OGDescription: page.Meta.OGDescription,
		OGImage:       ogImage,
		Template:      page.TemplateName(),
		Menus:         menus,
		Body:          template.HTML(body), //nolint:gosec // page bodies are authored content
		SiteName:      site.Name,
	}
}
