package assets

import "errors"

// Chain tries its loaders in order. Only a missing asset moves the lookup to
// the next loader; invalid names and read errors are returned as is.
type Chain []AssetLoader

// New returns the embedded assets, preceded by the tree under customDir when
// it is set.
func New(customDir string) (Chain, error) {
	if customDir == "" {
		return Chain{NewEmbeddedLoader()}, nil
	}
	dir, err := NewDirLoader(customDir)
	if err != nil {
		return nil, err
	}
	return Chain{dir, NewEmbeddedLoader()}, nil
}

// LoadStyle returns the first style called name.
func (c Chain) LoadStyle(name string) (string, error) {
	return c.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

// LoadScript returns the first script called name.
func (c Chain) LoadScript(name string) (string, error) {
	return c.first(func(l AssetLoader) (string, error) { return l.LoadScript(name) })
}

func (c Chain) first(load func(AssetLoader) (string, error)) (string, error) {
	err := errors.New("no asset loaders")
	for _, l := range c {
		var content string
		content, err = load(l)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrScriptNotFound) {
			return "", err
		}
	}
	return "", err
}

var _ AssetLoader = Chain(nil)
