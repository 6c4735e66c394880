package api

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown converts argument markdown to HTML for read responses.
// Raw content is what gets stored; rendering happens only at the edge.
func renderMarkdown(content string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML,
	})
	return string(markdown.ToHTML([]byte(content), p, renderer))
}
