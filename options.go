package mdlive

import (
	"time"

	"cdr.dev/slog"
)

// DefaultInterval is the reload poll interval.
const DefaultInterval = 2000 * time.Millisecond

// MinInterval is the shortest accepted poll interval.
const MinInterval = 100 * time.Millisecond

// RenderOptions selects the resources injected into rendered pages.
type RenderOptions struct {
	// Style is a built-in style name, a CSS file path or inline CSS.
	// Empty injects no stylesheet.
	Style string
	// HighlightStyle is a chroma style name. Empty injects no highlight CSS.
	HighlightStyle string
	// MathJax loads MathJax from MathJaxURL (DefaultMathJaxURL if empty).
	MathJax    bool
	MathJaxURL string
	// Sanitize filters converted HTML through an allow-list policy.
	Sanitize bool
}

// DefaultRenderOptions returns the options used when none are given.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Style:          DefaultStyle,
		HighlightStyle: DefaultHighlightStyle,
		MathJax:        true,
		MathJaxURL:     DefaultMathJaxURL,
	}
}

type pageConfig struct {
	interval    time.Duration
	render      RenderOptions
	assetLoader AssetLoader
	assetPath   string
}

// Option configures a Page.
type Option func(*Page)

// WithDocument sets where rendered pages are written. Required.
func WithDocument(d Document) Option {
	return func(p *Page) {
		p.doc = d
	}
}

// WithSettings sets the settings store. Defaults to a fresh memory store.
func WithSettings(s SettingsStore) Option {
	return func(p *Page) {
		p.store = s
	}
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(p *Page) {
		p.fetcher = f
	}
}

// WithConverter replaces the Markdown converter. Render options that act
// on conversion (Sanitize) are then up to the caller.
func WithConverter(c Converter) Option {
	return func(p *Page) {
		p.converter = c
	}
}

// WithLogger sets the logger. Defaults to a logger without sinks.
func WithLogger(l slog.Logger) Option {
	return func(p *Page) {
		p.log = l
	}
}

// WithInterval sets the poll interval. Must be at least MinInterval.
func WithInterval(d time.Duration) Option {
	return func(p *Page) {
		p.cfg.interval = d
	}
}

// WithRenderOptions sets the injected resources.
func WithRenderOptions(o RenderOptions) Option {
	return func(p *Page) {
		p.cfg.render = o
	}
}

// WithAssetLoader sets the loader used to resolve styles and scripts.
// Takes precedence over WithAssetPath.
func WithAssetLoader(l AssetLoader) Option {
	return func(p *Page) {
		p.cfg.assetLoader = l
	}
}

// WithAssetPath loads styles and scripts from path before falling back to
// the embedded ones.
func WithAssetPath(path string) Option {
	return func(p *Page) {
		p.cfg.assetPath = path
	}
}

// WithTrigger makes every receive on ch run an immediate poll tick, in
// addition to the interval.
func WithTrigger(ch <-chan struct{}) Option {
	return func(p *Page) {
		p.trigger = ch
	}
}
