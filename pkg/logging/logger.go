// Package logging builds the hclog loggers used by the countertheme tools.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel selects the log level when no flag or config sets one.
	EnvLogLevel = "COUNTERTHEME_LOG_LEVEL"

	// EnvJSONLog switches output to JSON when set to "1".
	EnvJSONLog = "COUNTERTHEME_JSON_LOG"

	// DefaultLevel keeps the CLI quiet unless asked otherwise.
	DefaultLevel = "warn"

	linePrefix = "🎞️ "
)

// NewLogger creates an hclog logger with UTC timestamps. Text output is
// prefixed line by line; JSON output is left untouched.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(EnvJSONLog) == "1"
	if !jsonFormat {
		output = NewPrefixWriter(linePrefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      ParseLevel(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// ParseLevel converts a level name, falling back to DefaultLevel for
// unknown or empty names.
func ParseLevel(level string) hclog.Level {
	if l := hclog.LevelFromString(strings.TrimSpace(level)); l != hclog.NoLevel {
		return l
	}
	return hclog.LevelFromString(DefaultLevel)
}

// GetLogLevel returns the level from the environment, or DefaultLevel.
func GetLogLevel() string {
	if level := os.Getenv(EnvLogLevel); level != "" {
		return level
	}
	return DefaultLevel
}
