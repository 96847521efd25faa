// Package watch turns file system changes to a local document into tick
// requests for the reload poller.
//
// fsnotify is unreliable around editors that replace files on save, so the
// watch is re-added after every event and a slow fallback ticker compares
// modification times to catch missed events.
package watch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"cdr.dev/slog"
	"github.com/fsnotify/fsnotify"
)

// Defaults for Trigger.
const (
	DefaultDebounce     = 16 * time.Millisecond
	DefaultRecheckEvery = 10 * time.Second

	maxRewatchDelay = 16 * time.Second
)

// Sentinel errors.
var (
	ErrNotFileURL     = errors.New("not a file URL")
	ErrWatcherClosed  = errors.New("fsnotify watcher closed")
	ErrWatcherStartup = errors.New("failed to start file watcher")
)

// Trigger sends on C whenever the watched file changes. Bursts of events
// within the debounce window collapse into a single send, and sends never
// block: a pending request absorbs later ones.
type Trigger struct {
	path         string
	fw           *fsnotify.Watcher
	ch           chan struct{}
	log          slog.Logger
	debounce     time.Duration
	recheckEvery time.Duration
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithLogger sets the logger.
func WithLogger(l slog.Logger) Option {
	return func(t *Trigger) {
		t.log = l
	}
}

// WithDebounce sets the quiet period that ends an event burst.
func WithDebounce(d time.Duration) Option {
	return func(t *Trigger) {
		if d > 0 {
			t.debounce = d
		}
	}
}

// WithRecheckEvery sets the fallback modification time check interval.
func WithRecheckEvery(d time.Duration) Option {
	return func(t *Trigger) {
		if d > 0 {
			t.recheckEvery = d
		}
	}
}

// New creates a Trigger for path. Call Run to start watching.
func New(path string, opts ...Option) (*Trigger, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherStartup, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherStartup, err)
	}

	t := &Trigger{
		path:         abs,
		fw:           fw,
		ch:           make(chan struct{}, 1),
		log:          slog.Make(),
		debounce:     DefaultDebounce,
		recheckEvery: DefaultRecheckEvery,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// LocalPath returns the file system path of a file:// URL.
func LocalPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFileURL, err)
	}
	if u.Scheme != "file" || u.Path == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFileURL, rawURL)
	}
	return filepath.FromSlash(u.Path), nil
}

// C returns the channel that receives change notifications.
func (t *Trigger) C() <-chan struct{} {
	return t.ch
}

// Path returns the absolute watched path.
func (t *Trigger) Path() string {
	return t.path
}

// Run watches until ctx is done, then closes the underlying watcher.
func (t *Trigger) Run(ctx context.Context) error {
	defer t.fw.Close()

	lastModified, err := t.rewatch(ctx)
	if err != nil {
		return err
	}

	burst := time.NewTimer(0)
	<-burst.C
	recheck := time.NewTicker(t.recheckEvery)
	defer recheck.Stop()

	pending := false
	for {
		select {
		case <-recheck.C:
			mt, err := t.rewatch(ctx)
			if err != nil {
				return err
			}
			if !mt.Equal(lastModified) {
				lastModified = mt
				t.log.Debug(ctx, "modification time changed without event", slog.F("path", t.path))
				t.request()
			}
		case ev, ok := <-t.fw.Events:
			if !ok {
				return ErrWatcherClosed
			}
			t.log.Debug(ctx, "received file system event", slog.F("event", ev.String()))
			mt, err := t.rewatch(ctx)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod && mt.Equal(lastModified) {
				continue
			}
			lastModified = mt
			pending = true
			burst.Reset(t.debounce)
		case <-burst.C:
			if pending {
				pending = false
				t.log.Info(ctx, "detected change", slog.F("path", t.path))
				t.request()
			}
		case err, ok := <-t.fw.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			t.log.Error(ctx, "fsnotify error", slog.Error(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *Trigger) request() {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

// rewatch re-adds the file to the watcher and returns its modification
// time. While the file is missing (editors often delete and recreate it on
// save) it retries, doubling the delay from the debounce period up to
// maxRewatchDelay. Only the first failure of a streak is logged as a warning.
func (t *Trigger) rewatch(ctx context.Context) (time.Time, error) {
	delay := t.debounce
	for attempt := 1; ; attempt++ {
		err := t.fw.Add(t.path)
		if err == nil {
			var info os.FileInfo
			if info, err = os.Stat(t.path); err == nil {
				return info.ModTime(), nil
			}
		}

		fields := []slog.Field{slog.F("path", t.path), slog.F("attempt", attempt), slog.F("retry_in", delay.String()), slog.Error(err)}
		if attempt == 1 {
			t.log.Warn(ctx, "watched file unavailable", fields...)
		} else {
			t.log.Debug(ctx, "watched file still unavailable", fields...)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
		delay = min(delay*2, maxRewatchDelay)
	}
}
