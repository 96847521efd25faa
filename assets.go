package mdlive

import (
	"errors"
	"fmt"
	"os"

	"github.com/alnah/go-mdlive/internal/assets"
	"github.com/alnah/go-mdlive/internal/fileutil"
	"github.com/alnah/go-mdlive/internal/pipeline"
)

// Asset name constants for built-in styles and scripts.
const (
	// DefaultStyle is the name of the built-in CSS style.
	DefaultStyle = assets.DefaultStyleName

	// DefaultHighlightStyle is the chroma style used for code blocks.
	DefaultHighlightStyle = pipeline.DefaultHighlightStyle

	// DefaultMathJaxURL is the MathJax bundle loaded when math is enabled.
	DefaultMathJaxURL = pipeline.DefaultMathJaxURL
)

// AssetLoader loads CSS styles and scripts by name.
// Implementations may load from filesystem, embedded assets, a database, etc.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadScript loads a script by name (without .js extension).
	// Returns ErrScriptNotFound if the script doesn't exist.
	LoadScript(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, only embedded assets are used. Otherwise
// basePath/styles/{name}.css and basePath/scripts/{name}.js take precedence
// over the embedded ones.
//
// Returns ErrInvalidAssetPath if basePath is set but not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	chain, err := assets.New(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{chain: chain}, nil
}

// StyleNames lists the built-in style names.
func StyleNames() []string {
	return assets.StyleNames()
}

// HighlightStyleNames lists the chroma style names accepted by
// RenderOptions.HighlightStyle.
func HighlightStyleNames() []string {
	return pipeline.HighlightStyleNames()
}

type assetLoaderAdapter struct {
	chain assets.Chain
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.chain.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadScript(name string) (string, error) {
	content, err := a.chain.LoadScript(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// resolveAssets builds the resources injected into rendered pages.
func resolveAssets(loader AssetLoader, opts RenderOptions) (*pipeline.Assets, error) {
	css, err := resolveStyle(loader, opts.Style)
	if err != nil {
		return nil, err
	}

	a := &pipeline.Assets{StyleCSS: css}

	if opts.HighlightStyle != "" {
		a.HighlightCSS, err = pipeline.HighlightCSS(opts.HighlightStyle)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOption, err)
		}
	}

	if opts.MathJax {
		a.MathJaxURL = opts.MathJaxURL
		if a.MathJaxURL == "" {
			a.MathJaxURL = DefaultMathJaxURL
		}
		a.MathJaxConfig, err = loader.LoadScript(assets.MathJaxConfigName)
		if err != nil {
			return nil, fmt.Errorf("loading MathJax config: %w", err)
		}
	}
	return a, nil
}

// resolveStyle accepts a style name, a CSS file path or inline CSS.
func resolveStyle(loader AssetLoader, input string) (string, error) {
	switch {
	case input == "":
		return "", nil
	case fileutil.IsFilePath(input):
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	case fileutil.IsCSS(input):
		return input, nil
	}

	css, err := loader.LoadStyle(input)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", input, err)
	}
	return css, nil
}

// convertAssetError maps internal asset errors to public sentinels while
// keeping the original message.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrStyleNotFound), errors.Is(err, assets.ErrInvalidAssetName):
		return &wrappedAssetError{sentinel: ErrStyleNotFound, original: err}
	case errors.Is(err, assets.ErrScriptNotFound):
		return &wrappedAssetError{sentinel: ErrScriptNotFound, original: err}
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrAssetRead):
		return &wrappedAssetError{sentinel: ErrInvalidAssetPath, original: err}
	default:
		return err
	}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel; internal errors are not exposed.
func (e *wrappedAssetError) Unwrap() error {
	return e.sentinel
}

// Compile-time interface check.
var _ AssetLoader = (*assetLoaderAdapter)(nil)
