// Package logging builds the hclog loggers used across animbundle.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Environment variables read by this package.
const (
	EnvLogLevel = "ANIMBUNDLE_LOG_LEVEL"
	EnvJSONLog  = "ANIMBUNDLE_JSON_LOG"
	EnvLogPath  = "ANIMBUNDLE_LOG_PATH"
)

// DefaultLevel applies when nothing else sets a level.
const DefaultLevel = "info"

// Prefix starts every text-mode log line.
const Prefix = "🎞️ "

// ResolveLevel picks the log level and reports where it came from.
// Precedence: CLI flag, ANIMBUNDLE_LOG_LEVEL, config file, default.
func ResolveLevel(cliLevel, configLevel string) (level, source string) {
	switch {
	case cliLevel != "":
		return cliLevel, "CLI --log-level"
	case os.Getenv(EnvLogLevel) != "":
		return os.Getenv(EnvLogLevel), EnvLogLevel
	case configLevel != "":
		return configLevel, "config file"
	default:
		return DefaultLevel, "default"
	}
}

// ParseLevel splits the "json[:level]" form. A plain level selects text
// output unless ANIMBUNDLE_JSON_LOG=1.
func ParseLevel(spec string) (level string, jsonFormat bool) {
	jsonFormat = os.Getenv(EnvJSONLog) == "1"
	level = spec
	if strings.HasPrefix(spec, "json") {
		jsonFormat = true
		if _, rest, ok := strings.Cut(spec, ":"); ok && rest != "" {
			level = rest
		} else {
			level = DefaultLevel
		}
	}
	return level, jsonFormat
}

// NewLogger creates a new hclog logger with standard settings. level accepts
// the "json[:level]" form.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	actual, jsonFormat := ParseLevel(level)

	if !jsonFormat {
		output = NewPrefixWriter(Prefix, output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(actual),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// OpenOutput returns stderr, tee'd to ANIMBUNDLE_LOG_PATH when it is set.
// The returned close function is never nil.
func OpenOutput() (io.Writer, func() error, error) {
	path := os.Getenv(EnvLogPath)
	if path == "" {
		return os.Stderr, func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return io.MultiWriter(os.Stderr, f), f.Close, nil
}
