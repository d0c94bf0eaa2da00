package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-page2lms/internal/fileutil"
	"github.com/alnah/go-page2lms/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DefaultSourceURL is exported when nothing else names a page.
const DefaultSourceURL = "https://cs362.alexulbrich.com/lectures/git-and-github/"

// Defaults applied by DefaultConfig.
const (
	DefaultOutputFile   = "output-main.html"
	DefaultMainSelector = "main"
	DefaultTimeout      = 2 * time.Minute
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Field length limits.
const (
	MaxURLLength      = 2048 // Browser limit
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxSelectorLength = 256
	MaxTimeout        = 30 * time.Minute
)

// Config holds all configuration for an export run.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Browser BrowserConfig `yaml:"browser"`
	Inline  InlineConfig  `yaml:"inline"`
	Extract ExtractConfig `yaml:"extract"`
	Log     LogConfig     `yaml:"log"`
}

// SourceConfig names the page to export.
type SourceConfig struct {
	URL string `yaml:"url"`
}

// OutputConfig defines where the fragment and its report go.
type OutputConfig struct {
	File   string `yaml:"file"`   // Single-URL output file (default: output-main.html)
	Dir    string `yaml:"dir"`    // Output directory when several URLs are exported
	Report string `yaml:"report"` // Optional YAML report path (empty = none)
}

// BrowserConfig defines headless Chrome options.
type BrowserConfig struct {
	Bin       string        `yaml:"bin"`       // Chrome binary (empty = ROD_BROWSER_BIN or managed Chromium)
	NoSandbox bool          `yaml:"noSandbox"` // Disable the Chrome sandbox (containers, CI)
	Timeout   time.Duration `yaml:"timeout"`   // Per-export timeout (default: 2m)
	Workers   int           `yaml:"workers"`   // Parallel exports for multiple URLs (0 = auto)
}

// InlineConfig mirrors the CSS inliner flags. The flags default to true.
type InlineConfig struct {
	PreserveMediaQueries bool   `yaml:"preserveMediaQueries"`
	ApplyStyleTags       bool   `yaml:"applyStyleTags"`
	InlinePseudoElements bool   `yaml:"inlinePseudoElements"`
	ExtraCSS             string `yaml:"extraCSS"` // CSS file applied after the page's styles
}

// ExtractConfig defines the main-content selector.
type ExtractConfig struct {
	Selector string `yaml:"selector"` // CSS selector for main content (default: "main")
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level (default: info)
	Format string `yaml:"format"` // "text" or "json"
	File   string `yaml:"file"`   // Optional rotating log file
}

// Validate checks values and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("source.url", c.Source.URL, MaxURLLength); err != nil {
		return err
	}
	if c.Source.URL != "" && !fileutil.IsURL(c.Source.URL) {
		return fmt.Errorf("%w: source.url %q (must start with http://, https:// or file://)", ErrInvalidValue, c.Source.URL)
	}

	if err := validateFieldLength("output.file", c.Output.File, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.report", c.Output.Report, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}

	if c.Browser.Timeout < 0 || c.Browser.Timeout > MaxTimeout {
		return fmt.Errorf("%w: browser.timeout must be between 0 and %s, got %s", ErrInvalidValue, MaxTimeout, c.Browser.Timeout)
	}
	if c.Browser.Workers < 0 {
		return fmt.Errorf("%w: browser.workers must be >= 0, got %d", ErrInvalidValue, c.Browser.Workers)
	}

	if err := validateFieldLength("inline.extraCSS", c.Inline.ExtraCSS, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("extract.selector", c.Extract.Selector, MaxSelectorLength); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}
	if err := validateFieldLength("log.file", c.Log.File, MaxPathLength); err != nil {
		return err
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{URL: DefaultSourceURL},
		Output: OutputConfig{File: DefaultOutputFile},
		Browser: BrowserConfig{
			Timeout: DefaultTimeout,
		},
		Inline: InlineConfig{
			PreserveMediaQueries: true,
			ApplyStyleTags:       true,
			InlinePseudoElements: true,
		},
		Extract: ExtractConfig{Selector: DefaultMainSelector},
		Log:     LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the files LoadConfig tries for a config name, in order:
// ./<name>.yaml, ./<name>.yml, then the same under the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-page2lms", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing entry of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
