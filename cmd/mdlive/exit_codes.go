package main

import (
	"errors"
	"os"

	mdlive "github.com/alnah/go-mdlive"
	"github.com/alnah/go-mdlive/internal/config"
	"github.com/alnah/go-mdlive/internal/preview"
)

// Exit codes for mdlive CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Clean shutdown
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Fetch, store or listen failure
	ExitBrowser = 4 // Browser/Chrome errors
)

// CLI sentinel errors.
var (
	ErrUsage           = errors.New("usage error")
	ErrStore           = errors.New("settings store error")
	ErrSettingNotFound = errors.New("setting not found")

	// errHelpShown reports that a command printed its usage on request.
	errHelpShown = errors.New("help shown")
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdlive.ErrBrowserConnect) ||
		errors.Is(err, mdlive.ErrPageCreate) ||
		errors.Is(err, mdlive.ErrPageLoad) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mdlive.ErrFetch) ||
		errors.Is(err, ErrStore) ||
		errors.Is(err, preview.ErrListen) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdlive.ErrInvalidURL) ||
		errors.Is(err, mdlive.ErrInvalidOption) ||
		errors.Is(err, mdlive.ErrStyleNotFound) ||
		errors.Is(err, mdlive.ErrScriptNotFound) ||
		errors.Is(err, mdlive.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
