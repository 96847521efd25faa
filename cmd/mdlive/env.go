package main

import (
	"context"
	"io"
	"os"
	"time"

	mdlive "github.com/alnah/go-mdlive"
	"github.com/alnah/go-mdlive/internal/preview"
	"github.com/alnah/go-mdlive/internal/settings"
)

// settingsStore is the store the CLI reads, writes and lists.
type settingsStore interface {
	mdlive.SettingsStore
	List(ctx context.Context) ([]settings.Entry, error)
	Close() error
}

// Compile-time interface checks.
var (
	_ settingsStore = (*settings.SQLite)(nil)
	_ settingsStore = (*settings.Memory)(nil)

	_ browserDocument = (*mdlive.BrowserDocument)(nil)
)

// browserDocument is a Document backed by a browser it must release.
type browserDocument interface {
	mdlive.Document
	Close() error
}

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now                func() time.Time
	Stdout             io.Writer
	Stderr             io.Writer
	OpenStore          func(path string) (settingsStore, error)
	OpenBrowser        func(url string) error
	NewBrowserDocument func(url string, headless bool) browserDocument
}

// DefaultEnv returns the production environment: SQLite settings and the
// system browser.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		OpenStore:   openSQLiteStore,
		OpenBrowser: preview.OpenBrowser,

		NewBrowserDocument: newRodDocument,
	}
}

func newRodDocument(url string, headless bool) browserDocument {
	return mdlive.NewBrowserDocument(url, mdlive.WithHeadless(headless))
}

func openSQLiteStore(path string) (settingsStore, error) {
	s, err := settings.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
