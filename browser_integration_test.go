//go:build integration

package mdlive

// Notes:
// - Launches a real headless Chrome through go-rod; run with -tags=integration
// - Set ROD_BROWSER_BIN to use a pre-installed browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testTimeout = 30 * time.Second

func newHeadlessDocument(t *testing.T, sourceURL string) *BrowserDocument {
	t.Helper()
	doc := NewBrowserDocument(sourceURL, WithHeadless(true), WithBrowserTimeout(testTimeout))
	t.Cleanup(func() { _ = doc.Close() })
	return doc
}

func documentHTML(t *testing.T, doc *BrowserDocument) string {
	t.Helper()
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.page == nil {
		t.Fatal("browser page not open")
	}
	html, err := doc.page.HTML()
	if err != nil {
		t.Fatalf("reading page HTML: %v", err)
	}
	return html
}

func TestBrowserDocument_LoadRendersMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown")
		_, _ = w.Write([]byte("# Live Heading\n\nSome *text*.\n"))
	}))
	defer srv.Close()

	url := srv.URL + "/notes.md"
	doc := newHeadlessDocument(t, url)
	store := NewMemoryStore()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	if err := store.Set(ctx, KeyEnableRender, true); err != nil {
		t.Fatal(err)
	}

	page, err := NewPage(url, WithDocument(doc), WithSettings(store))
	if err != nil {
		t.Fatalf("NewPage() error: %v", err)
	}
	defer page.Close()

	got, err := page.Load(ctx)
	if err != nil || got != LoadRendered {
		t.Fatalf("Load() = %v, %v", got, err)
	}

	html := documentHTML(t, doc)
	for _, want := range []string{"<title>Live Heading</title>", "<em>text</em>", "markdown-body"} {
		if !strings.Contains(html, want) {
			t.Errorf("browser document missing %q", want)
		}
	}
}

func TestBrowserDocument_ReplaceAfterClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain"))
	}))
	defer srv.Close()

	doc := newHeadlessDocument(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	if err := doc.Replace(ctx, "<html><body><p>first</p></body></html>"); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := doc.Replace(ctx, "<html><body><p>second</p></body></html>"); err != nil {
		t.Fatalf("Replace() after Close error: %v", err)
	}
	if html := documentHTML(t, doc); !strings.Contains(html, "second") {
		t.Errorf("document = %q, want second write", html)
	}
}
