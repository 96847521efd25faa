package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultTitle is used when the document has no heading and no fallback
// title was configured.
const DefaultTitle = "Document"

// documentTemplate wraps Goldmark's fragment output in a complete HTML5
// document. Arguments: title, body.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body>
<article class="markdown-body">
%s
</article>
</body>
</html>`

// HTMLConverter abstracts markup to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to a standalone HTML document using
// goldmark (pure Go).
type GoldmarkConverter struct {
	md            goldmark.Markdown
	preprocessor  MarkdownPreprocessor
	sanitizer     HTMLSanitizer
	baseURL       string
	fallbackTitle string
}

// ConverterOption configures a GoldmarkConverter.
type ConverterOption func(*GoldmarkConverter)

// WithFallbackTitle sets the <title> used when the document has no heading.
func WithFallbackTitle(title string) ConverterOption {
	return func(c *GoldmarkConverter) {
		if title != "" {
			c.fallbackTitle = title
		}
	}
}

// WithBaseURL resolves relative links and images against u.
func WithBaseURL(u string) ConverterOption {
	return func(c *GoldmarkConverter) {
		c.baseURL = u
	}
}

// WithSanitizer runs s over the converted fragment.
func WithSanitizer(s HTMLSanitizer) ConverterOption {
	return func(c *GoldmarkConverter) {
		c.sanitizer = s
	}
}

// WithPreprocessor replaces the default CommonMarkPreprocessor.
func WithPreprocessor(p MarkdownPreprocessor) ConverterOption {
	return func(c *GoldmarkConverter) {
		if p != nil {
			c.preprocessor = p
		}
	}
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM, footnotes and
// class-based syntax highlighting. Raw HTML in the source is not rendered.
func NewGoldmarkConverter(opts ...ConverterOption) *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)

	c := &GoldmarkConverter{
		md:            md,
		preprocessor:  &CommonMarkPreprocessor{},
		fallbackTitle: DefaultTitle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToHTML converts content to an HTML5 document. Goldmark has no context
// support, so conversion runs in a goroutine raced against ctx.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		src := c.preprocessor.PreprocessMarkdown(ctx, content)

		var buf bytes.Buffer
		if err := c.md.Convert([]byte(src), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		fragment, err := ResolveRelativeLinks(ConvertMarkPlaceholders(buf.String()), c.baseURL)
		if err != nil {
			done <- result{err: fmt.Errorf("%w: resolving links: %v", ErrHTMLConversion, err)}
			return
		}
		if c.sanitizer != nil {
			fragment = c.sanitizer.Sanitize(fragment)
		}

		title := FirstHeading(fragment)
		if title == "" {
			title = c.fallbackTitle
		}
		done <- result{html: fmt.Sprintf(documentTemplate, html.EscapeString(title), fragment)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// FirstHeading returns the trimmed text of the first h1-h6 element in
// htmlContent, or "" if there is none.
func FirstHeading(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1, h2, h3, h4, h5, h6").First().Text())
}

// Compile-time interface check.
var _ HTMLConverter = (*GoldmarkConverter)(nil)
