package smtp

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// markdown renders report bodies. Completions often carry lists, emphasis
// and tables. Raw HTML in a completion is dropped, not passed through.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body style="font-family: sans-serif; line-height: 1.4">
`

// renderHTML converts a plain-text report into an HTML document.
func renderHTML(subject, body string) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, htmlHead, html.EscapeString(subject))
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render report html: %w", err)
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.String(), nil
}
