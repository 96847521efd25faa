package mdlive

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"cdr.dev/slog"

	"github.com/alnah/go-mdlive/internal/pipeline"
)

// txtExtension matches URLs ending in .txt, optionally followed by a query
// string or a further extension.
var txtExtension = regexp.MustCompile(`\.txt[.|?]?.*?$`)

// Converter turns raw markup into a complete HTML document.
type Converter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// Compile-time interface checks.
var (
	_ Converter              = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.AssetInjector = (*pipeline.AssetInjection)(nil)
	_ pipeline.HTMLSanitizer = (*pipeline.Sanitizer)(nil)
)

// LoadResult is the outcome of Page.Load.
type LoadResult int

const (
	// LoadFailed means fetching or rendering returned an error.
	LoadFailed LoadResult = iota
	// LoadRendered means the document was converted and written.
	LoadRendered
	// LoadDisabled means rendering is off; the document was left as is.
	LoadDisabled
	// LoadSkippedTxt means a .txt URL was not allowed.
	LoadSkippedTxt
	// LoadSkippedHTML means the response was already HTML.
	LoadSkippedHTML
)

func (r LoadResult) String() string {
	switch r {
	case LoadFailed:
		return "failed"
	case LoadRendered:
		return "rendered"
	case LoadDisabled:
		return "disabled"
	case LoadSkippedTxt:
		return "skipped-txt"
	case LoadSkippedHTML:
		return "skipped-html"
	default:
		return fmt.Sprintf("LoadResult(%d)", int(r))
	}
}

// Page is one page context: a document URL, the collaborators that fetch,
// convert and display it, and the reload poller watching it.
type Page struct {
	url       string
	name      string
	store     SettingsStore
	fetcher   Fetcher
	converter Converter
	doc       Document
	injector  pipeline.AssetInjector
	assets    *pipeline.Assets
	trigger   <-chan struct{}
	log       slog.Logger
	cfg       pageConfig

	poller *Poller
}

// NewPage creates a Page for rawURL (http, https or file). WithDocument is
// required. Returns ErrInvalidURL, ErrNoDocument, ErrInvalidOption, or an
// asset error if the configured style or scripts cannot be resolved.
func NewPage(rawURL string, opts ...Option) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https", "file":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	p := &Page{
		url:      rawURL,
		name:     documentName(u),
		injector: &pipeline.AssetInjection{},
		log:      slog.Make(),
		cfg: pageConfig{
			interval: DefaultInterval,
			render:   DefaultRenderOptions(),
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.doc == nil {
		return nil, ErrNoDocument
	}
	if p.cfg.interval < MinInterval {
		return nil, fmt.Errorf("%w: interval %v is below %v", ErrInvalidOption, p.cfg.interval, MinInterval)
	}
	if p.store == nil {
		p.store = NewMemoryStore()
	}
	if p.fetcher == nil {
		p.fetcher = NewHTTPFetcher(0)
	}
	if p.converter == nil {
		p.converter = p.defaultConverter()
	}

	loader := p.cfg.assetLoader
	if loader == nil {
		loader, err = NewAssetLoader(p.cfg.assetPath)
		if err != nil {
			return nil, err
		}
	}
	p.assets, err = resolveAssets(loader, p.cfg.render)
	if err != nil {
		return nil, err
	}

	p.poller = newPoller(p, p.cfg.interval, p.trigger)
	return p, nil
}

func (p *Page) defaultConverter() Converter {
	opts := []pipeline.ConverterOption{
		pipeline.WithBaseURL(p.url),
		pipeline.WithFallbackTitle(p.name),
	}
	if p.cfg.render.Sanitize {
		opts = append(opts, pipeline.WithSanitizer(pipeline.NewSanitizer()))
	}
	return pipeline.NewGoldmarkConverter(opts...)
}

// documentName is the last path element of u, or its host for a root URL.
func documentName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return u.Host
	}
	return name
}

// URL returns the document URL.
func (p *Page) URL() string {
	return p.url
}

// Poller returns the page's reload poller.
func (p *Page) Poller() *Poller {
	return p.poller
}

// Load runs the initial fetch and render decision, then starts the poller,
// which runs until Close, Poller().Stop or cancellation of ctx.
//
//  1. A .txt URL is skipped unless ALLOW_TXT_EXTENSION is the string "true".
//  2. The URL is fetched without cache; fetch errors are returned as ErrFetch
//     and the poller is not started.
//  3. An HTML response is skipped and the poller is not started.
//  4. If ENABLE_RENDER is the bool true the page is rendered. The poller is
//     started in any case, even if rendering failed.
func (p *Page) Load(ctx context.Context) (LoadResult, error) {
	if txtExtension.MatchString(p.url) && !p.txtAllowed(ctx) {
		p.log.Debug(ctx, "txt extension not allowed", slog.F("url", p.url))
		return LoadSkippedTxt, nil
	}

	res, err := p.fetcher.Fetch(ctx, p.url, FetchOptions{NoCache: true})
	if err != nil {
		return LoadFailed, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	if strings.Contains(res.ContentType(), "html") {
		p.log.Debug(ctx, "content is already html", slog.F("url", p.url), slog.F("content_type", res.ContentType()))
		return LoadSkippedHTML, nil
	}

	result := LoadDisabled
	var renderErr error
	if p.renderEnabled(ctx) {
		if renderErr = p.render(ctx, res.Body); renderErr == nil {
			result = LoadRendered
		} else {
			result = LoadFailed
		}
	}

	p.poller.Start(ctx)
	p.log.Info(ctx, "page loaded", slog.F("url", p.url), slog.F("result", result.String()))
	return result, renderErr
}

// Close stops the poller. The document target is not closed.
func (p *Page) Close() error {
	p.poller.Stop()
	return nil
}

// render converts body, injects assets and replaces the document.
func (p *Page) render(ctx context.Context, body string) error {
	html, err := p.converter.ToHTML(ctx, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	html = p.injector.InjectAssets(ctx, html, p.assets)
	return p.replace(ctx, html)
}

// displayPlain replaces the document with body shown verbatim.
func (p *Page) displayPlain(ctx context.Context, body string) error {
	return p.replace(ctx, pipeline.PlainHTML(body, p.name))
}

// replace writes html to the document. Target errors keep their own
// sentinels in the chain next to ErrDocumentWrite.
func (p *Page) replace(ctx context.Context, html string) error {
	err := p.doc.Replace(ctx, html)
	if err == nil || errors.Is(err, ErrDocumentWrite) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDocumentWrite, err)
}

// reload is one poll tick. See Poller.Tick.
func (p *Page) reload(ctx context.Context) TickResult {
	res, err := p.fetcher.Fetch(ctx, p.url, FetchOptions{NoCache: true, OverrideMIME: true})
	if err != nil {
		p.log.Warn(ctx, "reload fetch failed", slog.F("url", p.url), slog.Error(err))
		return TickFetchFailed
	}

	if p.liveReloadDetected(ctx) {
		return TickSkippedLiveReload
	}

	sum := Fingerprint(res.Body)
	if stored, ok := p.storedFingerprint(ctx); ok && stored == sum {
		return TickUnchanged
	}

	result := TickDisplayed
	if p.renderEnabled(ctx) {
		result = TickRendered
		err = p.render(ctx, res.Body)
	} else {
		err = p.displayPlain(ctx, res.Body)
	}
	if err != nil {
		// Not persisting lets the next tick retry.
		p.log.Error(ctx, "reload failed", slog.F("url", p.url), slog.Error(err))
		return TickFailed
	}

	if err := p.store.Set(ctx, FingerprintKey(p.url), sum); err != nil {
		p.log.Warn(ctx, "persisting fingerprint failed", slog.F("url", p.url), slog.Error(err))
	}
	p.log.Info(ctx, "content changed", slog.F("url", p.url), slog.F("result", result.String()))
	return result
}
