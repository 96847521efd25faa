package mdlive

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdlive/internal/process"
)

// DefaultBrowserTimeout bounds page loads in a BrowserDocument.
const DefaultBrowserTimeout = 30 * time.Second

// BrowserDocument displays pages in a Chrome tab driven by go-rod.
// Rod downloads Chromium on first use if no browser is found.
type BrowserDocument struct {
	sourceURL string
	headless  bool
	timeout   time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// BrowserOption configures a BrowserDocument.
type BrowserOption func(*BrowserDocument)

// WithHeadless runs the browser without a window.
func WithHeadless(headless bool) BrowserOption {
	return func(b *BrowserDocument) {
		b.headless = headless
	}
}

// WithBrowserTimeout bounds page loads.
func WithBrowserTimeout(d time.Duration) BrowserOption {
	return func(b *BrowserDocument) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// NewBrowserDocument creates a BrowserDocument. The tab first navigates to
// sourceURL, so relative links keep the source's origin, and its content
// is then replaced on every write. The browser starts lazily.
func NewBrowserDocument(sourceURL string, opts ...BrowserOption) *BrowserDocument {
	b := &BrowserDocument{
		sourceURL: sourceURL,
		timeout:   DefaultBrowserTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ensurePage lazily launches the browser and opens the tab.
func (b *BrowserDocument) ensurePage(ctx context.Context) error {
	if b.page != nil {
		return nil
	}

	if b.browser == nil {
		l := launcher.New().Headless(b.headless)

		// Use pre-installed browser if specified (Docker/containerized environments)
		if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
			l = l.Bin(bin)
		}

		// NoSandbox required for CI and containerized environments
		if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
			l = l.NoSandbox(true)
		}
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
		}
		b.launcher = l

		browser := rod.New().ControlURL(u)
		if err := browser.Connect(); err != nil {
			b.killLauncher()
			return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
		}
		b.browser = browser
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: b.sourceURL})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			_ = page.Close()
			return context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	b.page = page
	return nil
}

// Replace sets the tab's document to html.
func (b *BrowserDocument) Replace(ctx context.Context, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensurePage(ctx); err != nil {
		return err
	}

	if err := b.page.Context(ctx).SetDocumentContent(html); err != nil {
		// The tab may have been closed by the user; reopen on next write.
		_ = b.page.Close()
		b.page = nil
		return fmt.Errorf("%w: %v", ErrDocumentWrite, err)
	}
	return nil
}

// Close releases browser resources, killing the browser process group if
// it outlives the connection.
func (b *BrowserDocument) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
		b.page = nil
	}
	b.killLauncher()
	return err
}

func (b *BrowserDocument) killLauncher() {
	if b.launcher == nil {
		return
	}
	pid := b.launcher.PID()
	b.launcher.Kill()
	if process.Alive(pid) {
		process.KillGroup(pid)
	}
	b.launcher = nil
}
