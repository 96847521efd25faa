package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed styles scripts
var builtin embed.FS

// FSLoader reads an asset tree. Built-in trees are read from an embedded
// fs.FS; user directories are reopened through os.Root on every read so that
// edits show up on the next render.
type FSLoader struct {
	fsys fs.FS
	root string
}

// NewEmbeddedLoader returns a loader for the assets compiled into the binary.
func NewEmbeddedLoader() *FSLoader {
	return &FSLoader{fsys: builtin}
}

// NewDirLoader returns a loader for the asset tree under dir.
// Returns ErrInvalidBasePath if dir is not a readable directory.
func NewDirLoader(dir string) (*FSLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, abs)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, abs)
	}

	r, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	_ = r.Close()
	return &FSLoader{root: abs}, nil
}

// Load reads the asset name of kind k.
func (l *FSLoader) Load(k Kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	b, err := l.read(k.path(name))
	switch {
	case err == nil:
		return string(b), nil
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q", k.notFound(), name)
	default:
		return "", fmt.Errorf("%w: %s: %v", ErrAssetRead, k.path(name), err)
	}
}

// LoadStyle reads styles/{name}.css.
func (l *FSLoader) LoadStyle(name string) (string, error) {
	return l.Load(Style, name)
}

// LoadScript reads scripts/{name}.js.
func (l *FSLoader) LoadScript(name string) (string, error) {
	return l.Load(Script, name)
}

// Names lists the assets of kind k, sorted, without extension.
func (l *FSLoader) Names(k Kind) []string {
	var names []string
	_ = l.with(func(fsys fs.FS) error {
		entries, err := fs.ReadDir(fsys, k.dir())
		if err != nil {
			return err
		}
		for _, e := range entries {
			if name, ok := strings.CutSuffix(e.Name(), k.ext()); ok && !e.IsDir() {
				names = append(names, name)
			}
		}
		return nil
	})
	sort.Strings(names)
	return names
}

func (l *FSLoader) read(p string) ([]byte, error) {
	var b []byte
	err := l.with(func(fsys fs.FS) error {
		var err error
		b, err = fs.ReadFile(fsys, p)
		return err
	})
	return b, err
}

// with runs fn against the loader's file system, opening the root for
// directory loaders.
func (l *FSLoader) with(fn func(fs.FS) error) error {
	if l.root == "" {
		return fn(l.fsys)
	}
	r, err := os.OpenRoot(l.root)
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r.FS())
}

// StyleNames lists the built-in style names, sorted.
func StyleNames() []string {
	return NewEmbeddedLoader().Names(Style)
}

var _ AssetLoader = (*FSLoader)(nil)
