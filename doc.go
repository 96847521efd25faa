// Package mdlive renders lightweight-markup documents in place and keeps
// them fresh while their source changes.
//
// # Quick Start
//
// Create a page for a document URL, load it, and close when done:
//
//	url := "https://example.com/notes.md"
//	doc := mdlive.NewBrowserDocument(url)
//	defer doc.Close()
//
//	page, err := mdlive.NewPage(url,
//	    mdlive.WithDocument(doc),
//	    mdlive.WithSettings(store),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer page.Close()
//
//	result, err := page.Load(ctx)
//
// Load decides whether the document is rendered and then starts a reload
// poller that re-fetches the URL every DefaultInterval. Any Document works
// as a target; the mdlive command also ships a local preview server that
// pushes updates to connected browsers over a websocket.
//
// # Settings
//
// Rendering is driven by three keys read from the SettingsStore on every
// decision:
//
//   - ENABLE_RENDER: render only when it holds the bool true
//   - ALLOW_TXT_EXTENSION: allow .txt URLs only when it holds the string "true"
//   - LIVERELOADJS_DETECTED: pause reloads while it holds the bool true
//
// The poller also writes one key per URL, "md5" followed by the URL, holding
// the fingerprint of the last content it displayed.
//
// # Load Decision
//
//  1. A .txt URL is left alone unless explicitly allowed.
//  2. The URL is fetched bypassing caches.
//  3. A response that is already HTML is left alone and not polled.
//  4. The body is rendered if enabled, then the poller starts.
//
// # Reload Poller
//
// Each tick re-fetches the URL as UTF-8 plain text and compares its MD5
// fingerprint with the stored one. On change the body is rendered, or shown
// as escaped preformatted text when rendering is disabled, and the new
// fingerprint is stored. Ticks never overlap: a tick that fires while the
// previous one is still running is dropped.
//
// # Rendering
//
// Markdown goes through goldmark with GitHub extensions, chroma syntax
// highlighting and optional MathJax. Use RenderOptions to pick the style,
// highlight theme and sanitization, and WithAssetPath to override the
// embedded styles and scripts:
//
//	assets/
//	├── styles/
//	│   └── custom.css
//	└── scripts/
//	    └── mathjax-config.js
//
// # Browser Requirements
//
// BrowserDocument drives a Chrome tab through go-rod, which downloads a
// managed Chromium on first run (~/.cache/rod/browser/). For containers and
// CI environments, set ROD_NO_SANDBOX=1 to disable the Chrome sandbox. Use
// ROD_BROWSER_BIN to specify a custom Chrome binary.
package mdlive
