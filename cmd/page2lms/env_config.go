package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-page2lms/internal/config"
)

// envPrefix namespaces the CLI's environment variables.
const envPrefix = "PAGE2LMS_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	URL        string        // PAGE2LMS_URL: page to export
	ConfigPath string        // PAGE2LMS_CONFIG: config file name or path
	Output     string        // PAGE2LMS_OUTPUT: output file for one URL
	OutputDir  string        // PAGE2LMS_OUTPUT_DIR: output directory for several URLs
	Timeout    time.Duration // PAGE2LMS_TIMEOUT: per-page timeout
	Workers    int           // PAGE2LMS_WORKERS: parallel exports
	Selector   string        // PAGE2LMS_SELECTOR: main content selector
	ExtraCSS   string        // PAGE2LMS_EXTRA_CSS: CSS file applied after the page's styles
	LogLevel   string        // PAGE2LMS_LOG_LEVEL: logrus level
	LogFormat  string        // PAGE2LMS_LOG_FORMAT: text or json
	LogFile    string        // PAGE2LMS_LOG_FILE: rotating log file
}

// knownEnvVars lists valid PAGE2LMS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PAGE2LMS_URL":        true,
	"PAGE2LMS_CONFIG":     true,
	"PAGE2LMS_OUTPUT":     true,
	"PAGE2LMS_OUTPUT_DIR": true,
	"PAGE2LMS_TIMEOUT":    true,
	"PAGE2LMS_WORKERS":    true,
	"PAGE2LMS_SELECTOR":   true,
	"PAGE2LMS_EXTRA_CSS":  true,
	"PAGE2LMS_LOG_LEVEL":  true,
	"PAGE2LMS_LOG_FORMAT": true,
	"PAGE2LMS_LOG_FILE":   true,
	"PAGE2LMS_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable or non-positive durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		URL:        os.Getenv("PAGE2LMS_URL"),
		ConfigPath: os.Getenv("PAGE2LMS_CONFIG"),
		Output:     os.Getenv("PAGE2LMS_OUTPUT"),
		OutputDir:  os.Getenv("PAGE2LMS_OUTPUT_DIR"),
		Selector:   os.Getenv("PAGE2LMS_SELECTOR"),
		ExtraCSS:   os.Getenv("PAGE2LMS_EXTRA_CSS"),
		LogLevel:   os.Getenv("PAGE2LMS_LOG_LEVEL"),
		LogFormat:  os.Getenv("PAGE2LMS_LOG_FORMAT"),
		LogFile:    os.Getenv("PAGE2LMS_LOG_FILE"),
	}

	if timeout := os.Getenv("PAGE2LMS_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("PAGE2LMS_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// unknownEnvVars returns the set PAGE2LMS_* variables this CLI does not read.
// Helps catch typos like PAGE2LMS_SELECTR.
func unknownEnvVars() []string {
	var names []string
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// warnUnknownEnvVars writes a warning for each unrecognized PAGE2LMS_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, name := range unknownEnvVars() {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overrides config file values with the environment ones.
// Priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.URL != "" {
		cfg.Source.URL = env.URL
	}
	if env.Output != "" {
		cfg.Output.File = env.Output
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Timeout > 0 {
		cfg.Browser.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Browser.Workers = env.Workers
	}
	if env.Selector != "" {
		cfg.Extract.Selector = env.Selector
	}
	if env.ExtraCSS != "" {
		cfg.Inline.ExtraCSS = env.ExtraCSS
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}
}
