package page2lms

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-page2lms/internal/fileutil"
)

// Pipeline stages, logged at debug level as each one completes.
const (
	stageStart           = "start"
	stagePageLoaded      = "page-loaded"
	stageStylesCollected = "styles-collected"
	stageCSSResolved     = "css-resolved"
	stageDocumentWrapped = "document-wrapped"
	stageInlined         = "inlined"
	stageMainExtracted   = "main-extracted"
	stageWritten         = "written"
	stageEnd             = "end"
)

// outputPerm is the mode of written fragments.
const outputPerm = 0o644

// Exporter runs the page-to-fragment pipeline against one browser.
// Create with NewExporter, call Export or ExportToFile, and Close when done.
// An Exporter runs one export at a time; use ExporterPool for parallelism.
type Exporter struct {
	cfg    exporterConfig
	log    logrus.FieldLogger
	opener sessionOpener
}

// NewExporter creates an Exporter. The browser is launched on first use.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg: exporterConfig{
			timeout:  defaultTimeout,
			selector: defaultMainSelector,
			inline:   DefaultInlineOptions(),
		},
		log: discardLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if _, err := cascadia.Compile(e.cfg.selector); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, e.cfg.selector, err)
	}

	if e.opener == nil {
		e.opener = newRodBrowser(e.cfg.browserBin, e.cfg.noSandbox)
	}

	return e, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// source is everything read from the live page in session A.
type source struct {
	bundle      StyleBundle
	mainHTML    string
	mainFound   bool
	stylesheets []StylesheetResult
}

// Export loads sourceURL, inlines its styles and returns the main content.
// Only stylesheet fetch failures are recovered; they are listed in the report.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Exporter) Export(ctx context.Context, sourceURL string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := validateSourceURL(sourceURL); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.timeout)
	defer cancel()

	start := time.Now()
	log := e.log.WithField("url", sourceURL)
	traceStage(log, stageStart)

	src, err := e.readSource(ctx, sourceURL, log)
	if err != nil {
		return nil, err
	}

	css := concatCSS(src.bundle, src.stylesheets)
	doc := buildWrappedDocument(css, src.mainHTML)
	traceStage(log, stageDocumentWrapped)

	inlined, err := inlineCSS(doc, e.cfg.inline)
	if err != nil {
		return nil, err
	}
	traceStage(log, stageInlined)

	fragment, err := extractMain(ctx, e.opener, inlined, e.cfg.selector)
	if err != nil {
		return nil, err
	}
	traceStage(log, stageMainExtracted)

	return &Result{
		HTML: []byte(fragment),
		Report: &Report{
			SourceURL:   sourceURL,
			Stylesheets: src.stylesheets,
			MainFound:   src.mainFound,
			Duration:    time.Since(start),
		},
	}, nil
}

// readSource runs the stages that share session A. The session is closed on
// every path out of this function.
func (e *Exporter) readSource(ctx context.Context, sourceURL string, log logrus.FieldLogger) (*source, error) {
	s, err := e.opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			log.WithError(cerr).Debug("closing page session")
		}
	}()

	if err := fetchPage(ctx, s, sourceURL); err != nil {
		return nil, err
	}
	traceStage(log, stagePageLoaded)

	bundle, mainHTML, found, err := collectStyles(ctx, s, e.cfg.selector)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"inlineStyles": len(bundle.InlineStyles),
		"stylesheets":  len(bundle.StylesheetURLs),
		"mainFound":    found,
	}).Debug("styles collected")
	traceStage(log, stageStylesCollected)

	sheets, err := resolveExternalCSS(ctx, s, bundle.StylesheetURLs, log)
	if err != nil {
		return nil, err
	}
	traceStage(log, stageCSSResolved)

	return &source{
		bundle:      bundle,
		mainHTML:    mainHTML,
		mainFound:   found,
		stylesheets: sheets,
	}, nil
}

// ExportToFile exports sourceURL and writes the fragment to path.
// Nothing is written unless the export succeeds.
func (e *Exporter) ExportToFile(ctx context.Context, sourceURL, path string) (*Result, error) {
	res, err := e.Export(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	if err := WriteOutput(path, res.HTML); err != nil {
		return nil, err
	}

	log := e.log.WithFields(logrus.Fields{"url": sourceURL, "output": path})
	traceStage(log, stageWritten)
	traceStage(log, stageEnd)
	return res, nil
}

// WriteOutput replaces path with html atomically.
func WriteOutput(path string, html []byte) error {
	if err := fileutil.WriteFileAtomic(path, html, outputPerm); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// Close releases the browser.
func (e *Exporter) Close() error {
	if e.opener != nil {
		return e.opener.Close()
	}
	return nil
}

// validateSourceURL accepts absolute http, https and file URLs.
func validateSourceURL(raw string) error {
	if raw == "" {
		return ErrEmptyURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
		}
	case "file":
	default:
		return fmt.Errorf("%w: %q (scheme must be http, https or file)", ErrInvalidURL, raw)
	}
	return nil
}

func traceStage(log logrus.FieldLogger, stage string) {
	log.WithField("stage", stage).Debug("stage reached")
}
