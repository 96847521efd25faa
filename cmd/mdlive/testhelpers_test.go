package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	mdlive "github.com/alnah/go-mdlive"
	"github.com/alnah/go-mdlive/internal/settings"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testEnv returns an Environment backed by store with captured output.
func testEnv(store *settings.Memory) (*Environment, *syncBuffer, *syncBuffer) {
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Environment{
		Now:    time.Now,
		Stdout: stdout,
		Stderr: stderr,
		OpenStore: func(string) (settingsStore, error) {
			return store, nil
		},
		OpenBrowser: func(string) error { return nil },
		NewBrowserDocument: func(string, bool) browserDocument {
			return missingChrome{}
		},
	}
	return env, stdout, stderr
}

// missingChrome is a browser document whose browser never starts.
type missingChrome struct{}

func (missingChrome) Replace(context.Context, string) error {
	return fmt.Errorf("%w: chrome not found", mdlive.ErrBrowserConnect)
}

func (missingChrome) Close() error { return nil }

// waitFor polls cond until it holds or two seconds pass.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// servingURL extracts the preview URL from the "Serving X at URL" line.
func servingURL(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Serving ") {
			continue
		}
		if i := strings.LastIndex(line, " at "); i >= 0 {
			return strings.TrimSpace(line[i+len(" at "):])
		}
	}
	return ""
}
