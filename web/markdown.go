// ABOUTME: Markdown rendering for the strategy document using goldmark.
// ABOUTME: Output passes through a bluemonday UGC policy before it reaches the page.
package web

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	sanitize = bluemonday.UGCPolicy()
)

// markdownToHTML converts markdown to sanitized HTML. On a conversion error
// the input is returned escaped.
func markdownToHTML(input string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(input), &buf); err != nil {
		return html.EscapeString(input)
	}
	return string(sanitize.SanitizeBytes(buf.Bytes()))
}
