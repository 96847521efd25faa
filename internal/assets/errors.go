package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrStyleNotFound indicates no loader in the chain has the style.
	ErrStyleNotFound = errors.New("style not found")

	// ErrScriptNotFound indicates no loader in the chain has the script.
	ErrScriptNotFound = errors.New("script not found")

	// ErrInvalidAssetName indicates the name is empty or contains path
	// separators, so it could reach outside the kind's directory.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the custom asset directory is missing,
	// is not a directory, or cannot be opened as a root.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error other than a missing file,
	// including a symlink that resolves outside the asset directory.
	ErrAssetRead = errors.New("failed to read asset")
)
