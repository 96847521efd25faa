package assets

import (
	"fmt"
	"strings"
)

// Built-in asset names.
const (
	DefaultStyleName     = "default"
	LiveReloadScriptName = "livereload"
	MathJaxConfigName    = "mathjax-config"
)

// AssetLoader loads stylesheets and scripts by bare name.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadScript(name string) (string, error)
}

// Kind is a class of asset: where it lives and what a miss reports.
type Kind int

const (
	Style Kind = iota
	Script
)

func (k Kind) dir() string {
	if k == Script {
		return "scripts"
	}
	return "styles"
}

func (k Kind) ext() string {
	if k == Script {
		return ".js"
	}
	return ".css"
}

func (k Kind) notFound() error {
	if k == Script {
		return ErrScriptNotFound
	}
	return ErrStyleNotFound
}

// path is the slash-separated location of name inside an asset tree.
func (k Kind) path(name string) string {
	return k.dir() + "/" + name + k.ext()
}

// ValidateAssetName rejects empty names and names with separators or dots,
// which keeps lookups inside their directory and extension.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
