package page2lms

// Notes:
// - Export runs against fakeBrowser, which serves canned responses and renders
//   with goquery instead of Chrome; the real rod sessions are covered by the
//   integration tests.
// - Warnings are asserted through the logrus test hook, not console output.
// - rodBrowser.Close process-group kill: requires a launched browser
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const (
	testSourceURL = "https://course.test/lectures/git-and-github/"
	testSheetA    = "https://course.test/_astro/a.css"
	testSheetB    = "https://course.test/_astro/b.css"
)

const testPage = `<!DOCTYPE html>
<html>
<head>
<style>h1 { font-weight: bold; }</style>
<link rel="stylesheet" href="/_astro/a.css">
<link rel="stylesheet" href="https://course.test/_astro/b.css">
</head>
<body>
<nav><a href="/">Home</a></nav>
<main><h1>Git</h1><p class="lead">Version control.</p></main>
</body>
</html>`

func testPages() map[string]fakeResponse {
	return map[string]fakeResponse{
		testSourceURL: {status: 200, body: testPage},
		testSheetA:    {status: 200, body: "p { color: red; }"},
		testSheetB:    {status: 200, body: ".lead { margin: 0; }"},
	}
}

func newTestExporter(t *testing.T, b *fakeBrowser, opts ...Option) (*Exporter, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	opts = append([]Option{withSessionOpener(b), WithLogger(logger)}, opts...)
	e, err := NewExporter(opts...)
	if err != nil {
		t.Fatalf("NewExporter() error: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e, hook
}

func parseFragment(t *testing.T, html []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		t.Fatalf("parsing fragment: %v", err)
	}
	return doc
}

func warnings(hook *test.Hook) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// TestExport - Happy path
// ---------------------------------------------------------------------------

func TestExport_InlinesMainContent(t *testing.T) {
	t.Parallel()

	b := newFakeBrowser(testPages())
	e, hook := newTestExporter(t, b)

	res, err := e.Export(context.Background(), testSourceURL)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if !strings.HasPrefix(string(res.HTML), "<main>") {
		t.Errorf("fragment should be rooted at <main>, got %q", res.HTML)
	}
	doc := parseFragment(t, res.HTML)

	if doc.Find("nav").Length() != 0 {
		t.Error("content outside main should not be exported")
	}
	if doc.Find("style, link").Length() != 0 {
		t.Error("fragment should not carry style or link elements")
	}
	if got, _ := doc.Find("h1").Attr("style"); got != "font-weight: bold;" {
		t.Errorf("h1 style = %q, want font-weight: bold;", got)
	}
	if got, _ := doc.Find("p.lead").Attr("style"); got != "color: red; margin: 0;" {
		t.Errorf("p style = %q, want color: red; margin: 0;", got)
	}

	if !res.Report.MainFound {
		t.Error("Report.MainFound = false, want true")
	}
	if res.Report.SourceURL != testSourceURL {
		t.Errorf("Report.SourceURL = %q", res.Report.SourceURL)
	}
	if len(res.Report.Stylesheets) != 2 || len(res.Report.Failed()) != 0 {
		t.Errorf("Report.Stylesheets = %+v, want 2 fetched", res.Report.Stylesheets)
	}
	if n := len(warnings(hook)); n != 0 {
		t.Errorf("got %d warnings, want 0", n)
	}
}

func TestExport_ReusesOneSessionForStylesheets(t *testing.T) {
	t.Parallel()

	b := newFakeBrowser(testPages())
	e, _ := newTestExporter(t, b)

	if _, err := e.Export(context.Background(), testSourceURL); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	want := []string{testSourceURL, testSheetA, testSheetB}
	if strings.Join(b.navigations, " ") != strings.Join(want, " ") {
		t.Errorf("navigations = %v, want %v", b.navigations, want)
	}
	opened, closed := b.counts()
	if opened != 2 || closed != 2 {
		t.Errorf("sessions opened/closed = %d/%d, want 2/2", opened, closed)
	}
}

func TestExport_BodyWhenNoMain(t *testing.T) {
	t.Parallel()

	pages := map[string]fakeResponse{
		testSourceURL: {status: 200, body: `<html><head><style>p { color: teal; }</style></head>` +
			`<body><div id="content"><p>Plain page</p></div></body></html>`},
	}
	b := newFakeBrowser(pages)
	e, _ := newTestExporter(t, b)

	res, err := e.Export(context.Background(), testSourceURL)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if res.Report.MainFound {
		t.Error("Report.MainFound = true, want false")
	}
	if strings.Contains(string(res.HTML), "<main") {
		t.Errorf("fragment should not invent a main element, got %q", res.HTML)
	}
	doc := parseFragment(t, res.HTML)
	if doc.Find("#content p").Length() != 1 {
		t.Errorf("body content should be carried forward, got %q", res.HTML)
	}
	if got, _ := doc.Find("p").Attr("style"); got != "color: teal;" {
		t.Errorf("p style = %q, want color: teal;", got)
	}
}

func TestExport_CustomSelector(t *testing.T) {
	t.Parallel()

	pages := map[string]fakeResponse{
		testSourceURL: {status: 200, body: `<html><body><header>x</header>` +
			`<article class="doc"><p>Body</p></article></body></html>`},
	}
	b := newFakeBrowser(pages)
	e, _ := newTestExporter(t, b, WithMainSelector("article.doc"))

	res, err := e.Export(context.Background(), testSourceURL)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !strings.HasPrefix(string(res.HTML), `<article class="doc">`) {
		t.Errorf("fragment = %q, want rooted at article.doc", res.HTML)
	}
}

func TestExport_InlineOptions(t *testing.T) {
	t.Parallel()

	pages := map[string]fakeResponse{
		testSourceURL: {status: 200, body: `<html><head><style>p::before { content: "> "; }</style></head>` +
			`<body><main><p>Quote</p></main></body></html>`},
	}

	t.Run("pseudo elements inlined by default", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestExporter(t, newFakeBrowser(pages))
		res, err := e.Export(context.Background(), testSourceURL)
		if err != nil {
			t.Fatalf("Export() error: %v", err)
		}
		if got := parseFragment(t, res.HTML).Find("p span").Text(); got != "> " {
			t.Errorf("generated span text = %q, want %q", got, "> ")
		}
	})

	t.Run("pseudo elements disabled", func(t *testing.T) {
		t.Parallel()

		opts := DefaultInlineOptions()
		opts.InlinePseudoElements = false
		e, _ := newTestExporter(t, newFakeBrowser(pages), WithInlineOptions(opts))
		res, err := e.Export(context.Background(), testSourceURL)
		if err != nil {
			t.Fatalf("Export() error: %v", err)
		}
		if n := parseFragment(t, res.HTML).Find("p span").Length(); n != 0 {
			t.Errorf("found %d generated spans, want 0", n)
		}
	})
}

func TestExport_ExtraCSS(t *testing.T) {
	t.Parallel()

	pages := map[string]fakeResponse{
		testSourceURL: {status: 200, body: `<html><head><style>p { color: red; }</style></head>` +
			`<body><main><p>Quote</p></main></body></html>`},
	}

	opts := DefaultInlineOptions()
	opts.ExtraCSS = "p { color: navy; margin: 0; }"
	e, _ := newTestExporter(t, newFakeBrowser(pages), WithInlineOptions(opts))

	res, err := e.Export(context.Background(), testSourceURL)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if got, _ := parseFragment(t, res.HTML).Find("p").Attr("style"); got != "color: navy; margin: 0;" {
		t.Errorf("p style = %q, want the extra CSS to win", got)
	}
}

// TestExport_ModernStylesheet checks that syntax the CSS parser does not know
// is kept aside instead of failing the export.
func TestExport_ModernStylesheet(t *testing.T) {
	t.Parallel()

	pages := testPages()
	pages[testSheetA] = fakeResponse{status: 200, body: `
:root { --ink: #333; }
@container card (min-width: 30em) { .lead { columns: 2; } }
.lead {
	color: var(--ink);
	& em { font-style: normal; }
}
:is(h1, h2):where(.x, h1) { letter-spacing: 0; }
}`}
	pages[testSourceURL] = fakeResponse{status: 200, body: strings.Replace(testPage,
		`<p class="lead">Version control.</p>`, `<p class="lead">Version <em>control</em>.</p>`, 1)}

	e, hook := newTestExporter(t, newFakeBrowser(pages))
	res, err := e.Export(context.Background(), testSourceURL)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	doc := parseFragment(t, res.HTML)
	if got, _ := doc.Find("p.lead").Attr("style"); got != "color: #333; margin: 0;" {
		t.Errorf("p style = %q, want color: #333; margin: 0;", got)
	}
	if got, _ := doc.Find("p.lead em").Attr("style"); got != "font-style: normal;" {
		t.Errorf("em style = %q, want font-style: normal;", got)
	}
	if got, _ := doc.Find("h1").Attr("style"); got != "font-weight: bold; letter-spacing: 0;" {
		t.Errorf("h1 style = %q", got)
	}
	if n := len(warnings(hook)); n != 0 {
		t.Errorf("got %d warnings, want 0", n)
	}
}

func TestDefaultInlineOptions(t *testing.T) {
	t.Parallel()

	got := DefaultInlineOptions()
	want := InlineOptions{PreserveMediaQueries: true, ApplyStyleTags: true, InlinePseudoElements: true}
	if got != want {
		t.Errorf("DefaultInlineOptions() = %+v, want %+v", got, want)
	}

	got.ExtraCSS = "p { margin: 0; }"
	if internal := got.toInternal(); internal.ExtraCSS != got.ExtraCSS || !internal.ApplyStyleTags {
		t.Errorf("toInternal() = %+v, want fields carried over", internal)
	}
}

func TestExport_Deterministic(t *testing.T) {
	t.Parallel()

	b := newFakeBrowser(testPages())
	e, _ := newTestExporter(t, b)

	first, err := e.Export(context.Background(), testSourceURL)
	if err != nil {
		t.Fatalf("first Export() error: %v", err)
	}
	second, err := e.Export(context.Background(), testSourceURL)
	if err != nil {
		t.Fatalf("second Export() error: %v", err)
	}
	if string(first.HTML) != string(second.HTML) {
		t.Errorf("exports differ:\n%s\n---\n%s", first.HTML, second.HTML)
	}
}

// ---------------------------------------------------------------------------
// TestExport_StylesheetFailures - Recoverable per-URL failures
// ---------------------------------------------------------------------------

func TestExport_StylesheetFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		sheet fakeResponse
		drop  bool
	}{
		{
			name:  "not found",
			sheet: fakeResponse{status: 404, body: "Not Found"},
		},
		{
			name:  "server error",
			sheet: fakeResponse{status: 503, body: "Unavailable"},
		},
		{
			name:  "navigation error",
			sheet: fakeResponse{err: errors.New("net::ERR_CONNECTION_REFUSED")},
		},
		{
			name: "unknown host",
			drop: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pages := testPages()
			if tt.drop {
				delete(pages, testSheetA)
			} else {
				pages[testSheetA] = tt.sheet
			}
			b := newFakeBrowser(pages)
			e, hook := newTestExporter(t, b)

			res, err := e.Export(context.Background(), testSourceURL)
			if err != nil {
				t.Fatalf("Export() should recover from a stylesheet failure, got %v", err)
			}

			warns := warnings(hook)
			if len(warns) != 1 {
				t.Fatalf("got %d warnings, want exactly 1", len(warns))
			}
			if got := warns[0].Data["stylesheet"]; got != testSheetA {
				t.Errorf("warning names %v, want %s", got, testSheetA)
			}
			if _, ok := warns[0].Data["error"]; !ok {
				t.Error("warning should carry the error")
			}

			missing := res.Report.MissingURLs()
			if len(missing) != 1 || missing[0] != testSheetA {
				t.Errorf("MissingURLs() = %v, want [%s]", missing, testSheetA)
			}
			if !errors.Is(res.Report.Failed()[0].Err, ErrStylesheetFetch) {
				t.Errorf("failed result error = %v, want ErrStylesheetFetch", res.Report.Failed()[0].Err)
			}

			// The stylesheet after the failed one still applies
			doc := parseFragment(t, res.HTML)
			if got, _ := doc.Find("p.lead").Attr("style"); got != "margin: 0;" {
				t.Errorf("p style = %q, want margin: 0;", got)
			}
		})
	}
}

func TestExport_StylesheetStatusRecorded(t *testing.T) {
	t.Parallel()

	pages := testPages()
	pages[testSheetA] = fakeResponse{status: 404}
	e, _ := newTestExporter(t, newFakeBrowser(pages))

	res, err := e.Export(context.Background(), testSourceURL)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if got := res.Report.Stylesheets[0].Status; got != 404 {
		t.Errorf("Status = %d, want 404", got)
	}
	if got := res.Report.Stylesheets[1].Status; got != 200 {
		t.Errorf("Status = %d, want 200", got)
	}
}

// ---------------------------------------------------------------------------
// TestExport_Fatal - Failures that abort the export
// ---------------------------------------------------------------------------

func TestExport_Fatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(b *fakeBrowser)
		wantErr error
	}{
		{
			name:    "source unreachable",
			setup:   func(b *fakeBrowser) { delete(b.pages, testSourceURL) },
			wantErr: ErrPageLoad,
		},
		{
			name: "source not found",
			setup: func(b *fakeBrowser) {
				b.pages[testSourceURL] = fakeResponse{status: 404, body: "gone"}
			},
			wantErr: ErrPageLoad,
		},
		{
			name:    "browser does not start",
			setup:   func(b *fakeBrowser) { b.openErr = ErrBrowserConnect },
			wantErr: ErrBrowserConnect,
		},
		{
			name:    "evaluation fails",
			setup:   func(b *fakeBrowser) { b.evalErr = errors.New("target closed") },
			wantErr: ErrEvaluate,
		},
		{
			name:    "inlined document rejected",
			setup:   func(b *fakeBrowser) { b.setContErr = errors.New("target closed") },
			wantErr: ErrEvaluate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newFakeBrowser(testPages())
			tt.setup(b)
			e, _ := newTestExporter(t, b)

			res, err := e.Export(context.Background(), testSourceURL)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if res != nil {
				t.Error("result should be nil on failure")
			}
			if opened, closed := b.counts(); opened != closed {
				t.Errorf("sessions opened/closed = %d/%d, every session must be closed", opened, closed)
			}
		})
	}
}

func TestExport_RecoversPanic(t *testing.T) {
	t.Parallel()

	b := newFakeBrowser(testPages())
	b.panicEval = true
	e, _ := newTestExporter(t, b)

	_, err := e.Export(context.Background(), testSourceURL)
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Fatalf("error = %v, want internal error", err)
	}
	if opened, closed := b.counts(); opened != closed {
		t.Errorf("sessions opened/closed = %d/%d after panic", opened, closed)
	}
}

func TestExport_CanceledContext(t *testing.T) {
	t.Parallel()

	b := newFakeBrowser(testPages())
	e, _ := newTestExporter(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Export(ctx, testSourceURL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestExport_InvalidURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"empty", "", ErrEmptyURL},
		{"no scheme", "course.test/lectures", ErrInvalidURL},
		{"ftp scheme", "ftp://course.test/", ErrInvalidURL},
		{"no host", "https:///path", ErrInvalidURL},
		{"unparseable", "https://course.test/%zz", ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newFakeBrowser(testPages())
			e, _ := newTestExporter(t, b)

			_, err := e.Export(context.Background(), tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if opened, _ := b.counts(); opened != 0 {
				t.Error("no session should be opened for an invalid URL")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExportToFile - Output file handling
// ---------------------------------------------------------------------------

func TestExportToFile_Writes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "output-main.html")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	e, _ := newTestExporter(t, newFakeBrowser(testPages()))
	res, err := e.ExportToFile(context.Background(), testSourceURL, path)
	if err != nil {
		t.Fatalf("ExportToFile() error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(got) != string(res.HTML) {
		t.Errorf("file content differs from result HTML")
	}
}

func TestExportToFile_StillWritesWithMissingStylesheet(t *testing.T) {
	t.Parallel()

	pages := testPages()
	pages[testSheetA] = fakeResponse{status: 404}
	path := filepath.Join(t.TempDir(), "output-main.html")

	e, hook := newTestExporter(t, newFakeBrowser(pages))
	if _, err := e.ExportToFile(context.Background(), testSourceURL, path); err != nil {
		t.Fatalf("ExportToFile() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output should exist: %v", err)
	}
	if n := len(warnings(hook)); n != 1 {
		t.Errorf("got %d warnings, want 1", n)
	}
}

func TestExportToFile_NoOutputOnFailure(t *testing.T) {
	t.Parallel()

	t.Run("file not created", func(t *testing.T) {
		t.Parallel()

		pages := testPages()
		delete(pages, testSourceURL)
		path := filepath.Join(t.TempDir(), "output-main.html")

		e, _ := newTestExporter(t, newFakeBrowser(pages))
		if _, err := e.ExportToFile(context.Background(), testSourceURL, path); !errors.Is(err, ErrPageLoad) {
			t.Fatalf("error = %v, want ErrPageLoad", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("output file should not exist, stat error = %v", err)
		}
	})

	t.Run("existing file untouched", func(t *testing.T) {
		t.Parallel()

		pages := testPages()
		delete(pages, testSourceURL)
		path := filepath.Join(t.TempDir(), "output-main.html")
		if err := os.WriteFile(path, []byte("previous export"), 0o644); err != nil {
			t.Fatal(err)
		}

		e, _ := newTestExporter(t, newFakeBrowser(pages))
		if _, err := e.ExportToFile(context.Background(), testSourceURL, path); err == nil {
			t.Fatal("expected error")
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "previous export" {
			t.Errorf("existing output modified: %q", got)
		}
	})
}

func TestExportToFile_WriteError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing-dir", "out.html")
	e, _ := newTestExporter(t, newFakeBrowser(testPages()))

	_, err := e.ExportToFile(context.Background(), testSourceURL, path)
	if !errors.Is(err, ErrWriteOutput) {
		t.Fatalf("error = %v, want ErrWriteOutput", err)
	}
}

// ---------------------------------------------------------------------------
// TestExport_StageTrace - Debug trace of the pipeline
// ---------------------------------------------------------------------------

func TestExport_StageTrace(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.html")
	e, hook := newTestExporter(t, newFakeBrowser(testPages()))

	if _, err := e.ExportToFile(context.Background(), testSourceURL, path); err != nil {
		t.Fatalf("ExportToFile() error: %v", err)
	}

	var stages []string
	for _, entry := range hook.AllEntries() {
		if s, ok := entry.Data["stage"].(string); ok {
			stages = append(stages, s)
		}
	}
	want := []string{
		stageStart, stagePageLoaded, stageStylesCollected, stageCSSResolved,
		stageDocumentWrapped, stageInlined, stageMainExtracted, stageWritten, stageEnd,
	}
	if strings.Join(stages, ",") != strings.Join(want, ",") {
		t.Errorf("stages = %v, want %v", stages, want)
	}
}

// ---------------------------------------------------------------------------
// TestNewExporter - Construction and options
// ---------------------------------------------------------------------------

func TestNewExporter_Defaults(t *testing.T) {
	t.Parallel()

	e, err := NewExporter()
	if err != nil {
		t.Fatalf("NewExporter() error: %v", err)
	}
	defer e.Close()

	if e.cfg.timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", e.cfg.timeout, defaultTimeout)
	}
	if e.cfg.selector != "main" {
		t.Errorf("selector = %q, want main", e.cfg.selector)
	}
	if e.cfg.inline != DefaultInlineOptions() {
		t.Errorf("inline = %+v, want defaults", e.cfg.inline)
	}
	if _, ok := e.opener.(*rodBrowser); !ok {
		t.Errorf("opener = %T, want *rodBrowser", e.opener)
	}
}

func TestNewExporter_Options(t *testing.T) {
	t.Parallel()

	e, err := NewExporter(
		WithTimeout(45*time.Second),
		WithBrowserBin("/usr/bin/chromium"),
		WithNoSandbox(true),
		WithLogger(nil),
	)
	if err != nil {
		t.Fatalf("NewExporter() error: %v", err)
	}
	defer e.Close()

	if e.cfg.timeout != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", e.cfg.timeout)
	}
	rb, ok := e.opener.(*rodBrowser)
	if !ok {
		t.Fatalf("opener = %T, want *rodBrowser", e.opener)
	}
	if rb.bin != "/usr/bin/chromium" || !rb.noSandbox {
		t.Errorf("browser = %+v, want bin and noSandbox set", rb)
	}
	if e.log == nil {
		t.Error("nil logger should keep the default")
	}
}

func TestNewExporter_InvalidSelector(t *testing.T) {
	t.Parallel()

	_, err := NewExporter(WithMainSelector("main["))
	if !errors.Is(err, ErrInvalidSelector) {
		t.Fatalf("error = %v, want ErrInvalidSelector", err)
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) should panic")
		}
	}()
	WithTimeout(0)
}

func TestClose_ReleasesBrowser(t *testing.T) {
	t.Parallel()

	b := newFakeBrowser(testPages())
	e, err := NewExporter(withSessionOpener(b))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !b.browserDone {
		t.Error("Close() should close the browser")
	}
}

func TestRodBrowser_CloseBeforeLaunch(t *testing.T) {
	t.Parallel()

	if err := newRodBrowser("", false).Close(); err != nil {
		t.Errorf("Close() on an unlaunched browser = %v, want nil", err)
	}
}
