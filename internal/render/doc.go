// Package render turns page records into the HTML a visitor would receive.
//
// Page bodies are HTML or Markdown. Markdown is converted with goldmark and
// the result is wrapped in a site shell built with html/template: head
// metadata (title, description, canonical link, Open Graph tags) plus the
// configured navigation menus. The "raw" template skips the shell and
// returns the body alone.
package render
