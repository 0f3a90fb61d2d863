// Package report writes compiled reports and page score trends.
//
// Writers for three formats implement the Writer interface:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter: the dashboard JSON document
//   - MarkdownWriter: GitHub Flavored Markdown with tables, alerts and a
//     mermaid pie chart of the tier distribution
package report
