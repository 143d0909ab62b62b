package services

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
)

// RenderMarkdown converts the long-form game detail text to HTML.
func RenderMarkdown(md string) string {
	if md == "" {
		return ""
	}
	opts := html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank}
	return string(markdown.ToHTML([]byte(md), nil, html.NewRenderer(opts)))
}
