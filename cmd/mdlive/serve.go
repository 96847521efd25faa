package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"cdr.dev/slog"

	mdlive "github.com/alnah/go-mdlive"
	"github.com/alnah/go-mdlive/internal/assets"
	"github.com/alnah/go-mdlive/internal/config"
	"github.com/alnah/go-mdlive/internal/fileutil"
	"github.com/alnah/go-mdlive/internal/hints"
	"github.com/alnah/go-mdlive/internal/preview"
	"github.com/alnah/go-mdlive/internal/watch"
)

// runServe loads the document, then keeps serving it until ctx is done.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		printServeUsage(env.Stderr)
		return fmt.Errorf("%w: serve takes exactly one URL or path", ErrUsage)
	}
	rawURL, err := documentURL(positional[0])
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(flags.common.config, env.Stderr)
	if err != nil {
		return err
	}
	mergeServeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)

	store, err := openStore(cfg, env)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := seedSettings(ctx, store, cfg.Settings); err != nil {
		return fmt.Errorf("%w: seeding settings: %v", ErrStore, err)
	}

	loader, err := mdlive.NewAssetLoader(cfg.Assets.BasePath)
	if err != nil {
		return err
	}
	interval, _ := cfg.Poll.IntervalDuration()
	timeout, _ := cfg.Poll.TimeoutDuration()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	errc := make(chan error, 2)
	defer func() {
		cancel()
		wg.Wait()
	}()

	opts := []mdlive.Option{
		mdlive.WithSettings(store),
		mdlive.WithFetcher(mdlive.NewHTTPFetcher(timeout)),
		mdlive.WithLogger(log.Named("page")),
		mdlive.WithInterval(interval),
		mdlive.WithRenderOptions(renderOptions(cfg)),
		mdlive.WithAssetLoader(loader),
	}

	var srv *preview.Server
	if flags.server.browser {
		bd := env.NewBrowserDocument(rawURL, flags.server.headless)
		defer bd.Close()
		opts = append(opts, mdlive.WithDocument(bd))
	} else {
		js, err := loader.LoadScript(assets.LiveReloadScriptName)
		if err != nil {
			return err
		}
		srv = preview.New(preview.WithLogger(log.Named("preview")), preview.WithLiveReloadScript(js))
		if err := srv.Listen(cfg.Server.Host, cfg.Server.Port); err != nil {
			return fmt.Errorf("%w%s", err, hints.ForListen())
		}
		opts = append(opts, mdlive.WithDocument(srv))
	}

	if !flags.poll.noWatch {
		if trigger := startWatch(ctx, rawURL, log, &wg); trigger != nil {
			opts = append(opts, mdlive.WithTrigger(trigger))
		}
	}

	page, err := mdlive.NewPage(rawURL, opts...)
	switch {
	case errors.Is(err, mdlive.ErrStyleNotFound):
		return fmt.Errorf("%w%s", err, hints.ForStyleNotFound(mdlive.StyleNames()))
	case errors.Is(err, mdlive.ErrInvalidOption):
		return fmt.Errorf("%w%s", err, hints.ForNames(mdlive.HighlightStyleNames()))
	case err != nil:
		return err
	}
	defer page.Close()

	if srv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errc <- srv.Serve(ctx)
		}()
		fmt.Fprintf(env.Stdout, "Serving %s at %s\n", rawURL, srv.URL())
		if cfg.Server.Open {
			if err := env.OpenBrowser(srv.URL()); err != nil {
				log.Warn(ctx, "opening browser failed", slog.Error(err))
			}
		}
	}

	result, err := page.Load(ctx)
	switch {
	case errors.Is(err, mdlive.ErrFetch):
		return fmt.Errorf("%w%s", err, hints.ForFetch(rawURL))
	case errors.Is(err, mdlive.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, mdlive.ErrPageCreate), errors.Is(err, mdlive.ErrPageLoad):
		return err
	case err != nil:
		// The poller is running and retries on the next change.
		log.Error(ctx, "initial render failed", slog.Error(err))
	}

	switch result {
	case mdlive.LoadSkippedTxt:
		fmt.Fprintf(env.Stderr, "%s is a .txt URL; allow it with: mdlive settings set %s true --string\n",
			rawURL, mdlive.KeyAllowTxtExtension)
		return nil
	case mdlive.LoadSkippedHTML:
		fmt.Fprintf(env.Stderr, "%s is already HTML; nothing to render\n", rawURL)
		return nil
	case mdlive.LoadDisabled:
		fmt.Fprintf(env.Stderr, "rendering is disabled; enable it with: mdlive settings set %s true\n",
			mdlive.KeyEnableRender)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		return err
	}
}

// documentURL accepts an http(s) or file URL, or a local path which is
// turned into a file URL.
func documentURL(arg string) (string, error) {
	if strings.Contains(arg, "://") {
		return arg, nil
	}
	path, err := fileutil.ExpandHome(arg)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", mdlive.ErrInvalidURL, err)
	}
	if !fileutil.FileExists(abs) {
		return "", fmt.Errorf("%w: %s is not a file or URL", ErrUsage, arg)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// mergeServeFlags applies explicitly set flags over cfg.
func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	changed := f.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if changed("store") {
		cfg.Store.Path = f.store
	}
	if changed("interval") {
		cfg.Poll.Interval = f.poll.interval
	}
	if changed("timeout") {
		cfg.Poll.Timeout = f.poll.timeout
	}
	if changed("host") {
		cfg.Server.Host = f.server.host
	}
	if changed("port") {
		cfg.Server.Port = f.server.port
	}
	if changed("open") {
		cfg.Server.Open = f.server.open
	}
	if changed("style") {
		cfg.Render.Style = f.render.style
	}
	if changed("highlight-style") {
		cfg.Render.HighlightStyle = f.render.highlightStyle
	}
	if changed("asset-path") {
		cfg.Assets.BasePath = f.render.assetPath
	}
	if changed("mathjax-url") {
		cfg.Render.MathJaxURL = f.render.mathJaxURL
	}
	if changed("no-mathjax") {
		enabled := !f.render.noMathJax
		cfg.Render.MathJax = &enabled
	}
	if changed("sanitize") {
		cfg.Render.Sanitize = f.render.sanitize
	}
}

// renderOptions maps the render config onto library options.
func renderOptions(cfg *config.Config) mdlive.RenderOptions {
	return mdlive.RenderOptions{
		Style:          cfg.Render.Style,
		HighlightStyle: cfg.Render.HighlightStyle,
		MathJax:        cfg.Render.MathJaxEnabled(),
		MathJaxURL:     cfg.Render.MathJaxURL,
		Sanitize:       cfg.Render.Sanitize,
	}
}

// openStore opens the settings store configured in cfg.
func openStore(cfg *config.Config, env *Environment) (settingsStore, error) {
	path, err := cfg.StorePath()
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrStore, err, hints.ForStore())
	}
	store, err := env.OpenStore(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrStore, err, hints.ForStore())
	}
	return store, nil
}

// settingSeed is one key written by seedSettings.
type settingSeed struct {
	key   string
	value any
}

// seedSettings writes the config's setting seeds for keys not yet stored.
func seedSettings(ctx context.Context, store mdlive.SettingsStore, s config.SettingsConfig) error {
	var seeds []settingSeed
	if s.EnableRender != nil {
		seeds = append(seeds, settingSeed{mdlive.KeyEnableRender, *s.EnableRender})
	}
	if s.AllowTxtExtension != nil {
		seeds = append(seeds, settingSeed{mdlive.KeyAllowTxtExtension, strconv.FormatBool(*s.AllowTxtExtension)})
	}

	for _, seed := range seeds {
		_, ok, err := store.Get(ctx, seed.key)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := store.Set(ctx, seed.key, seed.value); err != nil {
			return err
		}
	}
	return nil
}

// startWatch starts a file trigger for file URLs. Returns nil for other
// URLs or if the watcher cannot start; polling still works then.
func startWatch(ctx context.Context, rawURL string, log slog.Logger, wg *sync.WaitGroup) <-chan struct{} {
	path, err := watch.LocalPath(rawURL)
	if err != nil {
		return nil
	}
	tr, err := watch.New(path, watch.WithLogger(log.Named("watch")))
	if err != nil {
		log.Warn(ctx, "file watch unavailable, polling only", slog.F("path", path), slog.Error(err))
		return nil
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tr.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn(ctx, "file watch stopped", slog.F("path", path), slog.Error(err))
		}
	}()
	return tr.C()
}
