package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used for code blocks.
const DefaultHighlightStyle = "github"

// ErrUnknownHighlightStyle indicates the chroma style name is not registered.
var ErrUnknownHighlightStyle = errors.New("unknown highlight style")

// HighlightCSS returns the stylesheet for the class-based chroma output
// produced by GoldmarkConverter.
func HighlightCSS(styleName string) (string, error) {
	if !slices.Contains(styles.Names(), styleName) {
		return "", fmt.Errorf("%w: %q", ErrUnknownHighlightStyle, styleName)
	}

	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(styleName)); err != nil {
		return "", fmt.Errorf("writing %s highlight CSS: %w", styleName, err)
	}
	return buf.String(), nil
}

// HighlightStyleNames lists the registered chroma style names.
func HighlightStyleNames() []string {
	return styles.Names()
}
