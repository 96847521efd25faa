package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFetch_NoCache(t *testing.T) {
	t.Parallel()

	reqs := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Clone(context.Background())
		w.Header().Set("Content-Type", "text/asciidoc")
		_, _ = w.Write([]byte("= Hello"))
	}))
	defer srv.Close()

	c := NewClient()
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }

	res, err := c.Fetch(context.Background(), srv.URL+"/doc.adoc?v=1", Options{NoCache: true})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if res.Body != "= Hello" {
		t.Errorf("Body = %q, want %q", res.Body, "= Hello")
	}
	r := <-reqs
	gotCacheControl, gotPragma := r.Header.Get("Cache-Control"), r.Header.Get("Pragma")
	if gotCacheControl != "no-cache" || gotPragma != "no-cache" {
		t.Errorf("cache headers = %q / %q, want no-cache", gotCacheControl, gotPragma)
	}
	if gotBust := r.URL.Query().Get(cacheBustParam); gotBust != "1700000000000" {
		t.Errorf("cache-bust param = %q, want 1700000000000", gotBust)
	}
	if res.ContentType() != "text/asciidoc" {
		t.Errorf("ContentType() = %q", res.ContentType())
	}
}

func TestFetch_CachedRequestHasNoBuster(t *testing.T) {
	t.Parallel()

	queries := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	if _, err := NewClient().Fetch(context.Background(), srv.URL+"/doc.md", Options{}); err != nil {
		t.Fatal(err)
	}
	if rawQuery := <-queries; rawQuery != "" {
		t.Errorf("query = %q, want empty", rawQuery)
	}
}

func TestFetch_OverrideMIME(t *testing.T) {
	t.Parallel()

	accepts := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accepts <- r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("caf\xc3\xa9"))
	}))
	defer srv.Close()

	res, err := NewClient().Fetch(context.Background(), srv.URL, Options{NoCache: true, OverrideMIME: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.ContentType() != PlainTextMIME {
		t.Errorf("ContentType() = %q, want %q", res.ContentType(), PlainTextMIME)
	}
	if res.Body != "café" {
		t.Errorf("Body = %q, want UTF-8 bytes kept as is", res.Body)
	}
	if accept := <-accepts; accept != "" {
		t.Errorf("Accept = %q, want the request left as is", accept)
	}
}

func TestFetch_DecodesDeclaredCharset(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=iso-8859-1")
		_, _ = w.Write([]byte("caf\xe9"))
	}))
	defer srv.Close()

	res, err := NewClient().Fetch(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Body != "café" {
		t.Errorf("Body = %q, want %q", res.Body, "café")
	}
}

func TestFetch_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/big" {
			_, _ = w.Write([]byte(strings.Repeat("a", 64)))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name    string
		url     string
		opts    []Option
		wantErr error
	}{
		{name: "not found", url: srv.URL + "/missing", wantErr: ErrStatus},
		{name: "too big", url: srv.URL + "/big", opts: []Option{WithMaxBytes(16)}, wantErr: ErrBodyTooBig},
		{name: "no scheme", url: "doc.adoc", wantErr: ErrInvalidURL},
		{name: "unsupported scheme", url: "ftp://x/doc.adoc", wantErr: ErrUnsupported},
		{name: "connection refused", url: "http://127.0.0.1:1/doc", wantErr: ErrRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewClient(tt.opts...).Fetch(context.Background(), tt.url, Options{NoCache: true})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetch_FileURL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("plain notes"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewClient().Fetch(context.Background(), "file://"+filepath.ToSlash(path), Options{NoCache: true})
	if err != nil {
		t.Fatalf("Fetch(file) error: %v", err)
	}
	if res.Body != "plain notes" {
		t.Errorf("Body = %q", res.Body)
	}
	if strings.Contains(res.ContentType(), "html") {
		t.Errorf("ContentType() = %q, want non-html", res.ContentType())
	}
}

func TestFetch_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().Fetch(ctx, srv.URL, Options{})
	if !errors.Is(err, ErrRequest) {
		t.Errorf("Fetch() error = %v, want ErrRequest", err)
	}
}
