// Package fetch retrieves the raw text of a document URL the way a page
// reload would see it: bypassing HTTP caches, optionally forcing the body to
// be read as plain UTF-8 text regardless of what the server declares.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Sentinel errors for fetch operations.
var (
	ErrInvalidURL  = errors.New("invalid document URL")
	ErrRequest     = errors.New("request failed")
	ErrStatus      = errors.New("unexpected response status")
	ErrBodyTooBig  = errors.New("response body exceeds limit")
	ErrUnsupported = errors.New("unsupported URL scheme")
)

// PlainTextMIME is the content type forced by Options.OverrideMIME.
const PlainTextMIME = "text/plain; charset=utf-8"

// Defaults for Client.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 8 << 20
)

// cacheBustParam mirrors the query parameter jQuery appends for cache:false.
const cacheBustParam = "_"

// Options controls a single fetch.
type Options struct {
	// NoCache sends no-cache headers and a cache-busting query parameter.
	NoCache bool
	// OverrideMIME ignores the declared content type and reads the body as
	// UTF-8 plain text.
	OverrideMIME bool
}

// Result is the outcome of a successful fetch.
type Result struct {
	Body       string
	Header     http.Header
	StatusCode int
}

// ContentType returns the effective Content-Type header.
func (r *Result) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// Client fetches documents over http, https and file URLs.
type Client struct {
	http     *http.Client
	maxBytes int64
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithHTTPClient replaces the underlying client. Its transport is used as is,
// so file URLs only work if that transport handles them.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a Client with a transport that also serves file URLs.
func NewClient(opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	c := &Client{
		http:     &http.Client{Transport: transport, Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves rawURL. Non-2xx responses are returned as ErrStatus.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	switch u.Scheme {
	case "http", "https":
		if opts.NoCache {
			q := u.Query()
			q.Set(cacheBustParam, strconv.FormatInt(c.now().UnixMilli(), 10))
			u.RawQuery = q.Encode()
		}
	case "file":
		// File transport ignores queries and caching headers.
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if opts.NoCache {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	header := resp.Header.Clone()
	if opts.OverrideMIME {
		header.Set("Content-Type", PlainTextMIME)
	}

	body, err := c.readBody(resp.Body, header.Get("Content-Type"), opts.OverrideMIME)
	if err != nil {
		return nil, err
	}

	return &Result{Body: body, Header: header, StatusCode: resp.StatusCode}, nil
}

// readBody reads at most maxBytes and decodes the declared charset unless
// the caller forced UTF-8. Bodies without a charset parameter are taken as
// UTF-8.
func (c *Client) readBody(r io.Reader, contentType string, forceUTF8 bool) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrRequest, err)
	}
	if int64(len(data)) > c.maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrBodyTooBig, c.maxBytes)
	}
	if forceUTF8 {
		return string(data), nil
	}

	label := declaredCharset(contentType)
	if label == "" || strings.EqualFold(label, "utf-8") {
		return string(data), nil
	}
	decoded, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		// Unknown label: keep the raw bytes rather than failing the reload.
		return string(data), nil
	}
	out, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("%w: decoding %s body: %v", ErrRequest, label, err)
	}
	return string(out), nil
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
