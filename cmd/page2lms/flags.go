package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// inlineFlags turns off individual inliner features.
type inlineFlags struct {
	noMediaQueries   bool
	noStyleTags      bool
	noPseudoElements bool
	extraCSS         string
}

// logFlags holds logging destination flags.
type logFlags struct {
	format string
	file   string
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common   commonFlags
	output   string
	workers  int
	timeout  string
	selector string
	report   string
	inline   inlineFlags
	log      logFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show stage traces and timing")
}

// addInlineFlags adds inliner flags to a FlagSet.
func addInlineFlags(fs *flag.FlagSet, f *inlineFlags) {
	fs.BoolVar(&f.noMediaQueries, "no-media-queries", false, "drop @media blocks instead of keeping them")
	fs.BoolVar(&f.noStyleTags, "no-style-tags", false, "ignore <style> blocks when inlining")
	fs.BoolVar(&f.noPseudoElements, "no-pseudo-elements", false, "do not turn ::before/::after into elements")
	fs.StringVar(&f.extraCSS, "extra-css", "", "CSS file applied after the page's styles")
}

// addLogFlags adds logging flags to a FlagSet.
func addLogFlags(fs *flag.FlagSet, f *logFlags) {
	fs.StringVar(&f.format, "log-format", "", "log format: text, json")
	fs.StringVar(&f.file, "log-file", "", "also write logs to this rotating file")
}

// newExportFlagSet registers every export flag on a quiet FlagSet.
// Parsing and shell completion share it.
func newExportFlagSet(f *exportFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file, or directory for several URLs")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel exports (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-page timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.selector, "selector", "", "CSS selector of the main content")
	fs.StringVar(&f.report, "report", "", "write a YAML export report to this path")

	addCommonFlags(fs, &f.common)
	addInlineFlags(fs, &f.inline)
	addLogFlags(fs, &f.log)
	return fs
}

// parseExportFlags parses export command flags and returns positional args.
// Errors are returned, not printed.
func parseExportFlags(args []string) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newExportFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
