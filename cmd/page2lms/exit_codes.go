package main

import (
	"context"
	"errors"
	"os"

	page2lms "github.com/alnah/go-page2lms"
	"github.com/alnah/go-page2lms/internal/config"
	"github.com/alnah/go-page2lms/internal/fileutil"
	"github.com/alnah/go-page2lms/internal/hints"
	"github.com/alnah/go-page2lms/internal/logging"
)

// Exit codes for the page2lms CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Export written
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Output not writable, permission denied
	ExitBrowser = 4 // Browser, navigation, or timeout errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, page2lms.ErrBrowserConnect) ||
		errors.Is(err, page2lms.ErrSessionCreate) ||
		errors.Is(err, page2lms.ErrPageLoad) ||
		errors.Is(err, page2lms.ErrEvaluate) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, page2lms.ErrWriteOutput) ||
		errors.Is(err, fileutil.ErrNotWritable) ||
		errors.Is(err, ErrWriteReport) ||
		errors.Is(err, ErrReadExtraCSS) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, page2lms.ErrEmptyURL) ||
		errors.Is(err, page2lms.ErrInvalidURL) ||
		errors.Is(err, page2lms.ErrInvalidSelector) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "" when none applies.
func hintFor(err error, sourceURL string) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, page2lms.ErrBrowserConnect), errors.Is(err, page2lms.ErrSessionCreate):
		return hints.ForBrowserConnect()
	case errors.Is(err, page2lms.ErrPageLoad):
		return hints.ForPageLoad(sourceURL)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(defaultConfigName))
	case errors.Is(err, page2lms.ErrWriteOutput), errors.Is(err, fileutil.ErrNotWritable):
		return hints.ForOutput()
	}
	return ""
}
