package page2lms

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-page2lms/internal/inline"
)

// StyleBundle is what the collector read from the live page, in document order.
type StyleBundle struct {
	InlineStyles   []string // text of each <style> element
	StylesheetURLs []string // absolute href of each link[rel=stylesheet]
}

// StylesheetResult is the outcome of fetching one linked stylesheet.
type StylesheetResult struct {
	URL    string `yaml:"url"`
	CSS    string `yaml:"-"`
	Status int    `yaml:"status,omitempty"` // HTTP status, 0 when unknown
	Err    error  `yaml:"-"`
}

// OK reports whether the stylesheet was fetched and its CSS used.
func (r StylesheetResult) OK() bool {
	return r.Err == nil
}

// Report describes one export run.
type Report struct {
	SourceURL   string
	Stylesheets []StylesheetResult
	MainFound   bool // false when the selector matched nothing and the body was used
	Duration    time.Duration
}

// Failed returns the stylesheets that could not be fetched, in document order.
func (r *Report) Failed() []StylesheetResult {
	if r == nil {
		return nil
	}
	var failed []StylesheetResult
	for _, s := range r.Stylesheets {
		if !s.OK() {
			failed = append(failed, s)
		}
	}
	return failed
}

// MissingURLs returns the URLs of the failed stylesheets.
func (r *Report) MissingURLs() []string {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	urls := make([]string, len(failed))
	for i, s := range failed {
		urls[i] = s.URL
	}
	return urls
}

// Result is the exported fragment plus its report.
type Result struct {
	HTML   []byte
	Report *Report
}

// InlineOptions controls the CSS inliner.
type InlineOptions struct {
	PreserveMediaQueries bool   // keep @media blocks in a <style> element
	ApplyStyleTags       bool   // read and remove <style> elements
	InlinePseudoElements bool   // turn ::before/::after content into <span> elements
	ExtraCSS             string // stylesheet applied after the page's own styles
}

// DefaultInlineOptions returns the options used when none are given: all
// features enabled and no extra stylesheet.
func DefaultInlineOptions() InlineOptions {
	d := inline.DefaultOptions()
	return InlineOptions{
		PreserveMediaQueries: d.PreserveMediaQueries,
		ApplyStyleTags:       d.ApplyStyleTags,
		InlinePseudoElements: d.InlinePseudoElements,
		ExtraCSS:             d.ExtraCSS,
	}
}

func (o InlineOptions) toInternal() inline.Options {
	return inline.Options{
		PreserveMediaQueries: o.PreserveMediaQueries,
		ApplyStyleTags:       o.ApplyStyleTags,
		InlinePseudoElements: o.InlinePseudoElements,
		ExtraCSS:             o.ExtraCSS,
	}
}

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	timeout    time.Duration
	selector   string
	inline     InlineOptions
	browserBin string
	noSandbox  bool
}

// Defaults used when no option overrides them.
const (
	defaultTimeout      = 2 * time.Minute
	defaultMainSelector = "main"
)

// WithTimeout sets the time budget of one export, all stages included.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("page2lms: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithLogger sets the logger receiving stage traces and stylesheet warnings.
// A nil logger keeps the default, which discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// WithInlineOptions sets the CSS inliner flags.
func WithInlineOptions(o InlineOptions) Option {
	return func(e *Exporter) {
		e.cfg.inline = o
	}
}

// WithMainSelector sets the CSS selector of the main content (default "main").
func WithMainSelector(selector string) Option {
	return func(e *Exporter) {
		e.cfg.selector = selector
	}
}

// WithBrowserBin sets the Chrome binary. Empty uses ROD_BROWSER_BIN or the managed Chromium.
func WithBrowserBin(path string) Option {
	return func(e *Exporter) {
		e.cfg.browserBin = path
	}
}

// WithNoSandbox disables the Chrome sandbox, needed in most containers.
func WithNoSandbox(disable bool) Option {
	return func(e *Exporter) {
		e.cfg.noSandbox = disable
	}
}

// withSessionOpener replaces the browser, for tests.
func withSessionOpener(o sessionOpener) Option {
	return func(e *Exporter) {
		e.opener = o
	}
}
