package pipeline

import (
	"strings"
	"testing"
)

func TestResolveRelativeLinks(t *testing.T) {
	t.Parallel()

	const base = "http://x/docs/guide/readme.md"

	tests := []struct {
		name         string
		html         string
		base         string
		wantContains []string
	}{
		{
			name:         "relative image",
			html:         `<img src="img/a.png"/>`,
			base:         base,
			wantContains: []string{`src="http://x/docs/guide/img/a.png"`},
		},
		{
			name:         "parent link",
			html:         `<a href="../other.md">o</a>`,
			base:         base,
			wantContains: []string{`href="http://x/docs/other.md"`},
		},
		{
			name:         "root relative",
			html:         `<a href="/top.md">t</a>`,
			base:         base,
			wantContains: []string{`href="http://x/top.md"`},
		},
		{
			name:         "anchor unchanged",
			html:         `<a href="#intro">i</a>`,
			base:         base,
			wantContains: []string{`href="#intro"`},
		},
		{
			name:         "absolute unchanged",
			html:         `<img src="https://cdn.example/a.png"/>`,
			base:         base,
			wantContains: []string{`src="https://cdn.example/a.png"`},
		},
		{
			name:         "data uri unchanged",
			html:         `<img src="data:image/png;base64,AAA"/>`,
			base:         base,
			wantContains: []string{`src="data:image/png;base64,AAA"`},
		},
		{
			name:         "file base",
			html:         `<img src="a.png"/>`,
			base:         "file:///home/me/notes/todo.md",
			wantContains: []string{`src="file:///home/me/notes/a.png"`},
		},
		{
			name:         "empty base unchanged",
			html:         `<img src="a.png"/>`,
			wantContains: []string{`<img src="a.png"/>`},
		},
		{
			name:         "full document kept whole",
			html:         `<!DOCTYPE html><html><head></head><body><img src="a.png"/></body></html>`,
			base:         base,
			wantContains: []string{"<html>", `src="http://x/docs/guide/a.png"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveRelativeLinks(tt.html, tt.base)
			if err != nil {
				t.Fatalf("ResolveRelativeLinks() error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ResolveRelativeLinks() missing %q in %q", want, got)
				}
			}
		})
	}
}

func TestResolveRelativeLinks_FragmentNotWrapped(t *testing.T) {
	t.Parallel()

	got, err := ResolveRelativeLinks(`<p><a href="b.md">b</a></p>`, "http://x/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<body>") || strings.Contains(got, "<html>") {
		t.Errorf("fragment should not be wrapped, got %q", got)
	}
}
