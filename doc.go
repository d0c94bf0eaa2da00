// Package page2lms exports the main content of a rendered web page as an HTML
// fragment whose styles live in style attributes, ready to paste into an LMS
// page editor that strips <style> and <link> elements.
//
// # Quick Start
//
//	exp, err := page2lms.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	res, err := exp.ExportToFile(ctx, "https://example.com/lectures/git/", "output-main.html")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, u := range res.Report.MissingURLs() {
//	    fmt.Println("stylesheet skipped:", u)
//	}
//
// # Export Pipeline
//
// One export runs these stages in order:
//
//  1. Load the page in a fresh browser session and wait for the network to settle
//  2. Collect inline <style> blocks, linked stylesheet URLs and the main markup
//  3. Fetch each stylesheet through the same session; failures are logged and skipped
//  4. Wrap the CSS and main markup in a minimal document and inline the CSS
//  5. Load the result in a second session and read the main element back
//
// Only stylesheet failures are recoverable. Any other failure aborts the export
// and ExportToFile leaves the output file untouched.
//
// # Configuration
//
//	exp, err := page2lms.NewExporter(
//	    page2lms.WithTimeout(time.Minute),
//	    page2lms.WithMainSelector("article"),
//	    page2lms.WithLogger(logrus.StandardLogger()),
//	    page2lms.WithInlineOptions(page2lms.InlineOptions{ApplyStyleTags: true}),
//	)
//
// # Parallel Processing
//
// Pages are independent. Export several with an ExporterPool:
//
//	pool := page2lms.NewExporterPool(4)
//	defer pool.Close()
//
//	exp, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(exp)
//
// # Browser Requirements
//
// Exports require Chrome/Chromium. The go-rod library automatically downloads
// a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package page2lms
