package mdlive

import (
	"context"
	"net/http"
	"time"

	"github.com/alnah/go-mdlive/internal/fetch"
)

// PlainTextMIME is the content type forced by FetchOptions.OverrideMIME.
const PlainTextMIME = fetch.PlainTextMIME

// FetchOptions controls a single fetch.
type FetchOptions struct {
	// NoCache bypasses HTTP caches.
	NoCache bool
	// OverrideMIME reads the body as UTF-8 plain text whatever the server
	// declares.
	OverrideMIME bool
}

// FetchResult is the body and headers of a successful fetch.
type FetchResult struct {
	Body       string
	Header     http.Header
	StatusCode int
}

// ContentType returns the Content-Type header.
func (r *FetchResult) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// Fetcher retrieves the raw text of a document URL. Non-2xx responses are
// errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error)
}

// NewHTTPFetcher returns a Fetcher for http, https and file URLs.
// A zero timeout keeps the default.
func NewHTTPFetcher(timeout time.Duration) Fetcher {
	return &httpFetcher{client: fetch.NewClient(fetch.WithTimeout(timeout))}
}

type httpFetcher struct {
	client *fetch.Client
}

func (f *httpFetcher) Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error) {
	res, err := f.client.Fetch(ctx, url, fetch.Options{
		NoCache:      opts.NoCache,
		OverrideMIME: opts.OverrideMIME,
	})
	if err != nil {
		return nil, err
	}
	return &FetchResult{Body: res.Body, Header: res.Header, StatusCode: res.StatusCode}, nil
}

// Compile-time interface check.
var _ Fetcher = (*httpFetcher)(nil)
