package mdlive

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"cdr.dev/slog/sloggers/slogtest"

	"github.com/alnah/go-mdlive/internal/settings"
)

// mockFetcher returns queued responses in order, repeating the last one.
type mockFetcher struct {
	mu        sync.Mutex
	responses []mockResponse
	calls     []FetchOptions
	urls      []string
}

type mockResponse struct {
	body        string
	contentType string
	err         error
}

func (m *mockFetcher) queue(r ...mockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, r...)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, opts)
	m.urls = append(m.urls, url)
	if len(m.responses) == 0 {
		return nil, errors.New("no response queued")
	}
	r := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	if r.err != nil {
		return nil, r.err
	}

	header := http.Header{}
	ct := r.contentType
	if opts.OverrideMIME {
		ct = PlainTextMIME
	}
	if ct != "" {
		header.Set("Content-Type", ct)
	}
	return &FetchResult{Body: r.body, Header: header, StatusCode: http.StatusOK}, nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockConverter records its inputs and wraps them in a marker.
type mockConverter struct {
	mu     sync.Mutex
	inputs []string
	err    error
}

func (m *mockConverter) ToHTML(ctx context.Context, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, content)
	if m.err != nil {
		return "", m.err
	}
	return "<html><head></head><body>converted:" + content + "</body></html>", nil
}

func (m *mockConverter) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inputs...)
}

// mockDocument records every replace.
type mockDocument struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (m *mockDocument) Replace(ctx context.Context, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes = append(m.writes, html)
	return nil
}

func (m *mockDocument) replaced() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

// failingStore fails every read.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (any, bool, error) {
	return nil, false, errors.New("store unavailable")
}

func (failingStore) Set(context.Context, string, any) error {
	return errors.New("store unavailable")
}

// fakeTicker is driven by the test.
type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// pageFixture bundles a Page with its mocks.
type pageFixture struct {
	page      *Page
	store     *settings.Memory
	fetcher   *mockFetcher
	converter *mockConverter
	doc       *mockDocument
	tickers   chan *fakeTicker
}

func newFixture(t *testing.T, url string, opts ...Option) *pageFixture {
	t.Helper()

	f := &pageFixture{
		store:     settings.NewMemory(),
		fetcher:   &mockFetcher{},
		converter: &mockConverter{},
		doc:       &mockDocument{},
		tickers:   make(chan *fakeTicker, 8),
	}

	base := []Option{
		WithSettings(f.store),
		WithFetcher(f.fetcher),
		WithConverter(f.converter),
		WithDocument(f.doc),
		WithLogger(slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})),
		WithRenderOptions(RenderOptions{}),
	}
	page, err := NewPage(url, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewPage(%q) error: %v", url, err)
	}
	page.poller.newTicker = func(time.Duration) ticker {
		ft := newFakeTicker()
		f.tickers <- ft
		return ft
	}
	t.Cleanup(func() { page.Close() })

	f.page = page
	return f
}

func (f *pageFixture) set(t *testing.T, key string, value any) {
	t.Helper()
	if err := f.store.Set(context.Background(), key, value); err != nil {
		t.Fatalf("Set(%q) error: %v", key, err)
	}
}
