package chat

import (
	"bytes"
	stdhtml "html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// markdown renders assistant text for web clients. Raw HTML in the text is
// not passed through.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// RenderHTML converts markdown reply text to an HTML fragment. On a render
// error the text is returned escaped as a paragraph.
func RenderHTML(text string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "<p>" + stdhtml.EscapeString(text) + "</p>"
	}
	return buf.String()
}
