package pipeline

import (
	"fmt"
	"html"
)

// plainTemplate shows raw text the way a browser displays text/plain.
// Arguments: title, preformatted block.
const plainTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// PlainPre wraps HTML-escaped text in the preformatted block used for plain
// display.
func PlainPre(text string) string {
	return `<pre style="word-wrap: break-word; white-space: pre-wrap;">` + html.EscapeString(text) + `</pre>`
}

// PlainHTML returns a document showing text verbatim.
func PlainHTML(text, title string) string {
	if title == "" {
		title = DefaultTitle
	}
	return fmt.Sprintf(plainTemplate, html.EscapeString(title), PlainPre(text))
}
