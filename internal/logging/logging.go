// Package logging builds the logrus logger used by the CLI.
package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Log file rotation limits.
const (
	maxFileSizeMB  = 10
	maxFileBackups = 3
	maxFileAgeDays = 28
)

var (
	ErrInvalidLevel  = errors.New("invalid log level")
	ErrInvalidFormat = errors.New("invalid log format")
)

// Options configures New.
type Options struct {
	Level  string    // logrus level name; empty = "info"
	Format string    // "text" (default) or "json"
	File   string    // optional rotating log file, written in addition to Out
	Out    io.Writer // console destination, usually stderr
}

// New returns a logger writing to opts.Out and, when opts.File is set, to a
// size-rotated file. The returned closer releases the file handle.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		lvl, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidLevel, opts.Level)
		}
		level = lvl
	}

	formatter, err := newFormatter(opts.Format)
	if err != nil {
		return nil, nil, err
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxFileSizeMB,
			MaxBackups: maxFileBackups,
			MaxAge:     maxFileAgeDays,
		}
		out = io.MultiWriter(out, rotator)
		closer = rotator
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	log.SetFormatter(formatter)
	return log, closer, nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return &logrus.TextFormatter{
			DisableTimestamp:       true,
			DisableLevelTruncation: true,
		}, nil
	case FormatJSON:
		return &logrus.JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (must be text or json)", ErrInvalidFormat, format)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
