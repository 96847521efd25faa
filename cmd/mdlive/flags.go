package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pollFlags holds reload poller flags.
type pollFlags struct {
	interval string
	timeout  string
	noWatch  bool
}

// serverFlags holds preview server and display flags.
type serverFlags struct {
	host     string
	port     string
	open     bool
	browser  bool
	headless bool
}

// renderFlags holds rendering flags.
type renderFlags struct {
	style          string
	highlightStyle string
	assetPath      string
	mathJaxURL     string
	noMathJax      bool
	sanitize       bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common commonFlags
	store  string
	poll   pollFlags
	server serverFlags
	render renderFlags

	// changed reports whether a flag was set on the command line.
	changed func(name string) bool
}

// settingsFlags holds flags for the settings command.
type settingsFlags struct {
	common   commonFlags
	store    string
	asString bool
	json     bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addPollFlags adds poller flags to a FlagSet.
func addPollFlags(fs *flag.FlagSet, f *pollFlags) {
	fs.StringVarP(&f.interval, "interval", "i", "", "poll interval (e.g., 500ms, 2s)")
	fs.StringVar(&f.timeout, "timeout", "", "per-fetch timeout (e.g., 10s)")
	fs.BoolVar(&f.noWatch, "no-watch", false, "do not watch local files for changes")
}

// addServerFlags adds preview server flags to a FlagSet.
func addServerFlags(fs *flag.FlagSet, f *serverFlags) {
	fs.StringVar(&f.host, "host", "", "preview server host")
	fs.StringVarP(&f.port, "port", "p", "", "preview server port (0 = any free port)")
	fs.BoolVar(&f.open, "open", false, "open the preview in the default browser")
	fs.BoolVar(&f.browser, "browser", false, "render into a Chrome tab instead of the preview server")
	fs.BoolVar(&f.headless, "headless", false, "with --browser, run Chrome without a window")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.style, "style", "", "style name, CSS file path or inline CSS")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "code highlight style")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.mathJaxURL, "mathjax-url", "", "MathJax bundle URL")
	fs.BoolVar(&f.noMathJax, "no-mathjax", false, "do not load MathJax")
	fs.BoolVar(&f.sanitize, "sanitize", false, "filter rendered HTML through an allow-list")
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVar(&f.store, "store", "", "settings database path (:memory: for none)")
	addCommonFlags(fs, &f.common)
	addPollFlags(fs, &f.poll)
	addServerFlags(fs, &f.server)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	f.changed = fs.Changed
	return f, fs.Args(), nil
}

// parseSettingsFlags parses settings command flags and returns positional args.
func parseSettingsFlags(args []string, stderr io.Writer) (*settingsFlags, []string, error) {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &settingsFlags{}

	fs.StringVar(&f.store, "store", "", "settings database path")
	fs.BoolVar(&f.asString, "string", false, "store the value as a string even if it reads as a bool")
	fs.BoolVar(&f.json, "json", false, "print as JSON")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printSettingsUsage(stderr) }

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parse maps -h/--help to errHelpShown and other failures to ErrUsage.
func parse(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flag.ErrHelp):
		return errHelpShown
	default:
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
}
