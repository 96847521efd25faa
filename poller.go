package mdlive

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// PollerState is the state of a Poller.
type PollerState int

const (
	// PollerStopped means no poll loop is running.
	PollerStopped PollerState = iota
	// PollerArmed means a poll loop is running.
	PollerArmed
)

func (s PollerState) String() string {
	switch s {
	case PollerStopped:
		return "stopped"
	case PollerArmed:
		return "armed"
	default:
		return fmt.Sprintf("PollerState(%d)", int(s))
	}
}

// TickResult is the outcome of one poll tick.
type TickResult int

const (
	// TickUnchanged means the fingerprint matched the stored one.
	TickUnchanged TickResult = iota
	// TickRendered means changed content was converted and written.
	TickRendered
	// TickDisplayed means changed content was written as plain text.
	TickDisplayed
	// TickSkippedLiveReload means another live-reload tool is active.
	TickSkippedLiveReload
	// TickFetchFailed means the fetch failed; the next tick retries.
	TickFetchFailed
	// TickFailed means writing the changed content failed; the fingerprint
	// was not persisted so the next tick retries.
	TickFailed
	// TickInFlight means a previous tick was still running; this one was
	// dropped.
	TickInFlight
)

func (r TickResult) String() string {
	switch r {
	case TickUnchanged:
		return "unchanged"
	case TickRendered:
		return "rendered"
	case TickDisplayed:
		return "displayed"
	case TickSkippedLiveReload:
		return "skipped-livereload"
	case TickFetchFailed:
		return "fetch-failed"
	case TickFailed:
		return "failed"
	case TickInFlight:
		return "in-flight"
	default:
		return fmt.Sprintf("TickResult(%d)", int(r))
	}
}

// PollerStats counts tick outcomes since the Poller was created.
type PollerStats struct {
	Ticks       int64 // ticks that ran (excludes dropped ones)
	Changes     int64 // rendered or displayed
	FetchErrors int64
	Failures    int64 // write failures after a change
	Skipped     int64 // live reload detected or dropped in flight
}

// ticker abstracts time.Ticker so tests can drive ticks by hand.
type ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) Chan() <-chan time.Time {
	return t.C
}

func newTimeTicker(d time.Duration) ticker {
	return timeTicker{time.NewTicker(d)}
}

// Poller re-fetches a page's URL at a fixed interval and re-renders it when
// the content fingerprint changes. At most one poll loop runs at a time.
type Poller struct {
	page      *Page
	interval  time.Duration
	trigger   <-chan struct{}
	newTicker func(time.Duration) ticker

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	inFlight atomic.Bool

	ticks       atomic.Int64
	changes     atomic.Int64
	fetchErrors atomic.Int64
	failures    atomic.Int64
	skipped     atomic.Int64
}

func newPoller(p *Page, interval time.Duration, trigger <-chan struct{}) *Poller {
	return &Poller{
		page:      p,
		interval:  interval,
		trigger:   trigger,
		newTicker: newTimeTicker,
	}
}

// Start stops any running loop, waits for it to exit, then arms a new one.
// The loop ends when ctx is done or Stop is called.
func (pl *Poller) Start(ctx context.Context) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	pl.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	pl.cancel, pl.done = cancel, done

	t := pl.newTicker(pl.interval)
	go pl.run(loopCtx, t, done)
}

// Stop ends the running loop, if any, and waits for it to exit.
// An in-flight tick sees its context canceled.
func (pl *Poller) Stop() {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.stopLocked()
}

func (pl *Poller) stopLocked() {
	if pl.cancel == nil {
		return
	}
	pl.cancel()
	<-pl.done
	pl.cancel, pl.done = nil, nil
}

// State reports whether a loop is running.
func (pl *Poller) State() PollerState {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.done == nil {
		return PollerStopped
	}
	select {
	case <-pl.done:
		return PollerStopped
	default:
		return PollerArmed
	}
}

// Stats returns a snapshot of the tick counters.
func (pl *Poller) Stats() PollerStats {
	return PollerStats{
		Ticks:       pl.ticks.Load(),
		Changes:     pl.changes.Load(),
		FetchErrors: pl.fetchErrors.Load(),
		Failures:    pl.failures.Load(),
		Skipped:     pl.skipped.Load(),
	}
}

func (pl *Poller) run(ctx context.Context, t ticker, done chan struct{}) {
	defer close(done)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			pl.Tick(ctx)
		case <-pl.trigger:
			pl.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle:
//
//  1. Fetch the URL without cache, forcing a UTF-8 plain text reading.
//  2. Skip if LIVERELOADJS_DETECTED is the bool true.
//  3. Compare the body fingerprint with the stored one; equal is a no-op.
//  4. On change, render if ENABLE_RENDER is the bool true, else show the
//     escaped text, then persist the new fingerprint.
//
// A Tick started while another is running returns TickInFlight at once.
func (pl *Poller) Tick(ctx context.Context) TickResult {
	if !pl.inFlight.CompareAndSwap(false, true) {
		pl.skipped.Add(1)
		return TickInFlight
	}
	defer pl.inFlight.Store(false)

	pl.ticks.Add(1)
	result := pl.page.reload(ctx)

	switch result {
	case TickRendered, TickDisplayed:
		pl.changes.Add(1)
	case TickFetchFailed:
		pl.fetchErrors.Add(1)
	case TickFailed:
		pl.failures.Add(1)
	case TickSkippedLiveReload:
		pl.skipped.Add(1)
	}
	return result
}
