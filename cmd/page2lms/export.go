package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	page2lms "github.com/alnah/go-page2lms"
	"github.com/alnah/go-page2lms/internal/config"
	"github.com/alnah/go-page2lms/internal/fileutil"
	"github.com/alnah/go-page2lms/internal/hints"
	"github.com/alnah/go-page2lms/internal/logging"
)

// Sentinel errors for CLI operations.
var (
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrWriteReport        = errors.New("failed to write report")
	ErrReadExtraCSS       = errors.New("failed to read extra CSS")
)

// maxWorkers bounds --workers; each worker owns a Chrome process.
const maxWorkers = 32

// dirPermissions is the mode of created output directories.
const dirPermissions = 0o750 // rwxr-x---: owner full, group read+execute

// defaultConfigName is the config name suggested when none is found.
const defaultConfigName = "page2lms"

// exportJob is one page and the file its fragment goes to.
type exportJob struct {
	URL        string
	OutputPath string
}

// exportError ties a failed export to its page.
type exportError struct {
	URL string
	Err error
}

func (e *exportError) Error() string {
	return e.URL + ": " + e.Err.Error()
}

func (e *exportError) Unwrap() error {
	return e.Err
}

// runExportCmd parses flags, runs the export and returns an exit code.
func runExportCmd(args []string, env *Environment) int {
	flags, positional, err := parseExportFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printExportUsage(env.Stdout)
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n\n", err)
		printExportUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	warnUnknownEnvVars(env.Stderr)

	if err := runExport(ctx, positional, flags, env); err != nil {
		sourceURL := ""
		var ee *exportError
		if errors.As(err, &ee) {
			sourceURL = ee.URL
		}
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, sourceURL))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runExport orchestrates an export run.
// Priority: CLI flags > env vars > config file > defaults
func runExport(ctx context.Context, positionalArgs []string, flags *exportFlags, env *Environment) error {
	envCfg := loadEnvConfig()

	cfg := config.DefaultConfig()
	configName := flags.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Out:    env.Stderr,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	extraCSS, err := readExtraCSS(cfg.Inline.ExtraCSS)
	if err != nil {
		return err
	}

	urls := resolveURLs(positionalArgs, cfg)
	jobs := planJobs(urls, flags.output, cfg)
	if err := prepareOutputDirs(jobs); err != nil {
		return err
	}

	size := page2lms.ResolvePoolSize(cfg.Browser.Workers)
	if size > len(jobs) {
		size = len(jobs)
	}
	pool := env.NewPool(size, exporterOptions(cfg, extraCSS, log)...)
	defer func() {
		if err := pool.Close(); err != nil {
			log.WithError(err).Debug("closing exporter pool")
		}
	}()

	log.WithFields(logrus.Fields{"pages": len(jobs), "workers": size}).Debug("export started")
	results := exportBatch(ctx, pool, jobs)

	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	warnMissingStyles(results, cfg.Output.Report == "", flags.common.quiet, env)

	var reportErr error
	if cfg.Output.Report != "" {
		reportErr = writeReport(cfg.Output.Report, results, env.Now())
	}

	return errors.Join(batchError(results, failed), reportErr)
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *exportFlags, cfg *config.Config) error {
	if flags.workers < 0 || flags.workers > maxWorkers {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidWorkerCount, flags.workers, maxWorkers)
	}
	if flags.workers > 0 {
		cfg.Browser.Workers = flags.workers
	}

	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flags.timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, flags.timeout)
		}
		cfg.Browser.Timeout = d
	}

	if flags.selector != "" {
		cfg.Extract.Selector = flags.selector
	}
	if flags.report != "" {
		cfg.Output.Report = flags.report
	}

	if flags.inline.noMediaQueries {
		cfg.Inline.PreserveMediaQueries = false
	}
	if flags.inline.noStyleTags {
		cfg.Inline.ApplyStyleTags = false
	}
	if flags.inline.noPseudoElements {
		cfg.Inline.InlinePseudoElements = false
	}
	if flags.inline.extraCSS != "" {
		cfg.Inline.ExtraCSS = flags.inline.extraCSS
	}

	if flags.log.format != "" {
		cfg.Log.Format = flags.log.format
	}
	if flags.log.file != "" {
		cfg.Log.File = flags.log.file
	}

	// Verbose wins over quiet
	switch {
	case flags.common.verbose:
		cfg.Log.Level = "debug"
	case flags.common.quiet:
		cfg.Log.Level = "error"
	}

	return nil
}

// readExtraCSS returns the content of the extra stylesheet, if one is set.
func readExtraCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path from flag, env or config
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadExtraCSS, err)
	}
	return string(data), nil
}

// exporterOptions turns the merged config into library options.
func exporterOptions(cfg *config.Config, extraCSS string, log logrus.FieldLogger) []page2lms.Option {
	opts := []page2lms.Option{
		page2lms.WithLogger(log),
		page2lms.WithInlineOptions(page2lms.InlineOptions{
			PreserveMediaQueries: cfg.Inline.PreserveMediaQueries,
			ApplyStyleTags:       cfg.Inline.ApplyStyleTags,
			InlinePseudoElements: cfg.Inline.InlinePseudoElements,
			ExtraCSS:             extraCSS,
		}),
		page2lms.WithBrowserBin(cfg.Browser.Bin),
		page2lms.WithNoSandbox(cfg.Browser.NoSandbox),
	}
	if cfg.Extract.Selector != "" {
		opts = append(opts, page2lms.WithMainSelector(cfg.Extract.Selector))
	}
	if cfg.Browser.Timeout > 0 {
		opts = append(opts, page2lms.WithTimeout(cfg.Browser.Timeout))
	}
	return opts
}

// resolveURLs returns the pages to export: arguments first, then
// source.url (already overridden by PAGE2LMS_URL), then the built-in page.
func resolveURLs(positionalArgs []string, cfg *config.Config) []string {
	if len(positionalArgs) > 0 {
		return positionalArgs
	}
	if cfg.Source.URL != "" {
		return []string{cfg.Source.URL}
	}
	return []string{config.DefaultSourceURL}
}

// planJobs assigns an output path to each URL.
// One URL writes a file; several URLs write named files into a directory.
func planJobs(urls []string, output string, cfg *config.Config) []exportJob {
	if len(urls) == 1 {
		path := output
		if path == "" {
			path = cfg.Output.File
		}
		if path == "" {
			path = config.DefaultOutputFile
		}
		if isDirTarget(path) {
			path = filepath.Join(path, config.DefaultOutputFile)
		}
		return []exportJob{{URL: urls[0], OutputPath: path}}
	}

	dir := output
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if dir == "" {
		dir = "."
	}

	seen := make(map[string]int, len(urls))
	jobs := make([]exportJob, len(urls))
	for i, u := range urls {
		name := slugForURL(u)
		seen[name]++
		if n := seen[name]; n > 1 {
			name += "-" + strconv.Itoa(n)
		}
		jobs[i] = exportJob{URL: u, OutputPath: filepath.Join(dir, name+".html")}
	}
	return jobs
}

// isDirTarget reports whether path names a directory rather than a file.
func isDirTarget(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugForURL derives a file name from the URL path, or from the host
// when the path is empty: /lectures/git-and-github/ -> lectures-git-and-github.
func slugForURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "page"
	}
	base := strings.TrimSuffix(u.Path, filepath.Ext(u.Path))
	if strings.Trim(base, "/") == "" {
		base = u.Host
	}
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if slug == "" {
		return "page"
	}
	return slug
}

// prepareOutputDirs creates each output directory and checks it is writable
// before any browser is launched.
func prepareOutputDirs(jobs []exportJob) error {
	checked := make(map[string]bool)
	for _, j := range jobs {
		dir := filepath.Dir(j.OutputPath)
		if checked[dir] {
			continue
		}
		checked[dir] = true

		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := fileutil.CheckWritableDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// batchError summarizes failed exports. A single failure is returned as is.
func batchError(results []exportResult, failed int) error {
	if failed == 0 {
		return nil
	}

	errs := make([]error, 0, failed)
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, &exportError{URL: r.URL, Err: r.Err})
		}
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return fmt.Errorf("%d of %d export(s) failed: %w", failed, len(results), errors.Join(errs...))
}

// warnMissingStyles tells the user when a written fragment lacks some CSS.
func warnMissingStyles(results []exportResult, suggestReport, quiet bool, env *Environment) {
	if quiet {
		return
	}
	missing := 0
	for _, r := range results {
		if r.Err == nil {
			missing += len(r.Report.Failed())
		}
	}
	if missing == 0 {
		return
	}

	hint := ""
	if suggestReport {
		hint = hints.ForMissingStyles()
	}
	fmt.Fprintf(env.Stderr, "warning: %d stylesheet(s) could not be fetched and are missing from the output%s\n", missing, hint)
}
