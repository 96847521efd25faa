// Package assets holds the stylesheets and scripts injected into rendered
// documents and into the live preview page.
//
// Assets live in two directories, looked up by bare name:
//
//	styles/{name}.css
//	scripts/{name}.js
//
// The built-in set is embedded in the binary. A user directory with the same
// layout can be put in front of it with New; lookups fall through to the
// next loader only when an asset is missing.
//
// Names never contain separators or dots, and user directories are read
// through os.Root, so symlinks cannot reach files outside the directory.
package assets
