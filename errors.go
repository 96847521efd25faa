package mdlive

import "errors"

// Sentinel errors for library operations.
var (
	// Page construction errors.
	ErrInvalidURL    = errors.New("invalid document URL")
	ErrNoDocument    = errors.New("no document target configured")
	ErrInvalidOption = errors.New("invalid option")

	// ErrFetch wraps any failure of the initial fetch in Load. The poller is
	// not started when it is returned.
	ErrFetch = errors.New("fetching document failed")

	// Render errors. Load returns them with LoadFailed after the poller has
	// started; ticks log them and retry on the next change.
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrDocumentWrite  = errors.New("writing document failed")

	// Browser document errors. They reach callers wrapped in
	// ErrDocumentWrite, and errors.Is matches both.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrScriptNotFound   = errors.New("script not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
