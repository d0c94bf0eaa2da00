package page2lms

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyURL        = errors.New("source URL cannot be empty")
	ErrInvalidURL      = errors.New("invalid source URL")
	ErrInvalidSelector = errors.New("invalid main selector")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrSessionCreate  = errors.New("failed to create browser session")
	ErrPageLoad       = errors.New("failed to load page")
	ErrEvaluate       = errors.New("failed to evaluate script in page")

	// Recoverable per-stylesheet error, recorded in the Report.
	ErrStylesheetFetch = errors.New("failed to fetch stylesheet")

	ErrInline      = errors.New("CSS inlining failed")
	ErrWriteOutput = errors.New("failed to write output file")
	ErrPoolClosed  = errors.New("exporter pool is closed")
)
