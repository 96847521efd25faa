package mdlive

import (
	"context"

	"github.com/alnah/go-mdlive/internal/preview"
)

// Document is where rendered pages are written. Replace swaps the whole
// displayed document for html.
type Document interface {
	Replace(ctx context.Context, html string) error
}

// DocumentFunc adapts a function to Document.
type DocumentFunc func(ctx context.Context, html string) error

// Replace calls f.
func (f DocumentFunc) Replace(ctx context.Context, html string) error {
	return f(ctx, html)
}

// Compile-time interface checks.
var (
	_ Document = DocumentFunc(nil)
	_ Document = (*preview.Server)(nil)
	_ Document = (*BrowserDocument)(nil)
)
