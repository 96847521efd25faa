package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestHighlightCSS(t *testing.T) {
	t.Parallel()

	css, err := HighlightCSS(DefaultHighlightStyle)
	if err != nil {
		t.Fatalf("HighlightCSS(%q) error: %v", DefaultHighlightStyle, err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("HighlightCSS() should style .chroma classes, got %q", css)
	}

	if _, err := HighlightCSS("no-such-style"); !errors.Is(err, ErrUnknownHighlightStyle) {
		t.Errorf("HighlightCSS(unknown) error = %v, want ErrUnknownHighlightStyle", err)
	}
}
