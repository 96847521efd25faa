package pipeline

import (
	"context"
	"html"
	"strings"
)

// DefaultMathJaxURL is the MathJax bundle loaded when math is enabled.
const DefaultMathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"

// Assets holds the supporting resources injected into a rendered page.
// Empty fields are skipped.
type Assets struct {
	StyleCSS      string // main stylesheet
	HighlightCSS  string // chroma classes stylesheet
	MathJaxConfig string // inline script run before the MathJax bundle
	MathJaxURL    string // MathJax bundle; empty disables math rendering
}

// AssetInjector defines the contract for asset injection into HTML.
type AssetInjector interface {
	InjectAssets(ctx context.Context, htmlContent string, assets *Assets) string
}

// AssetInjection injects styles into <head> and scripts at the end of <body>.
type AssetInjection struct{}

// InjectAssets returns htmlContent unchanged if assets is nil or ctx is done.
func (a *AssetInjection) InjectAssets(ctx context.Context, htmlContent string, assets *Assets) string {
	if assets == nil || ctx.Err() != nil {
		return htmlContent
	}

	var head strings.Builder
	for _, css := range []string{assets.StyleCSS, assets.HighlightCSS} {
		if css != "" {
			head.WriteString("<style>")
			head.WriteString(sanitizeCSS(css))
			head.WriteString("</style>")
		}
	}
	htmlContent = InjectHead(htmlContent, head.String())

	if assets.MathJaxURL == "" {
		return htmlContent
	}

	var scripts strings.Builder
	if assets.MathJaxConfig != "" {
		scripts.WriteString("<script>")
		scripts.WriteString(sanitizeScript(assets.MathJaxConfig))
		scripts.WriteString("</script>")
	}
	scripts.WriteString(`<script async src="`)
	scripts.WriteString(html.EscapeString(assets.MathJaxURL))
	scripts.WriteString(`"></script>`)
	return InjectBodyEnd(htmlContent, scripts.String())
}

// InjectHead inserts snippet before </head>, else after <body>, else
// prepends it.
func InjectHead(htmlContent, snippet string) string {
	if snippet == "" {
		return htmlContent
	}
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + snippet + htmlContent[idx:]
	}
	if pos := afterBodyOpen(htmlContent, lowerHTML); pos != -1 {
		return htmlContent[:pos] + snippet + htmlContent[pos:]
	}
	return snippet + htmlContent
}

// InjectBodyEnd inserts snippet before the last </body>, else appends it.
func InjectBodyEnd(htmlContent, snippet string) string {
	if snippet == "" {
		return htmlContent
	}
	if idx := strings.LastIndex(strings.ToLower(htmlContent), "</body>"); idx != -1 {
		return htmlContent[:idx] + snippet + htmlContent[idx:]
	}
	return htmlContent + snippet
}

func afterBodyOpen(htmlContent, lowerHTML string) int {
	idx := strings.Index(lowerHTML, "<body")
	if idx == -1 {
		return -1
	}
	closeIdx := strings.Index(htmlContent[idx:], ">")
	if closeIdx == -1 {
		return -1
	}
	return idx + closeIdx + 1
}

// sanitizeCSS escapes sequences that could close the <style> block early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// sanitizeScript escapes sequences that could close the <script> block early.
func sanitizeScript(js string) string {
	return strings.ReplaceAll(js, "</", `<\/`)
}

// Compile-time interface check.
var _ AssetInjector = (*AssetInjection)(nil)
