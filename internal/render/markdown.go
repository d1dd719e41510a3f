package render

import (
	"gitlab.com/golang-commonmark/markdown"
)

// Raw HTML in post bodies is escaped, never passed through.
var parser = markdown.New(
	markdown.HTML(false),
	markdown.Linkify(true),
	markdown.Typographer(true),
	markdown.MaxNesting(10),
)

// Markdown renders CommonMark post content to HTML.
func Markdown(content string) string {
	if content == "" {
		return ""
	}
	return parser.RenderToString([]byte(content))
}
