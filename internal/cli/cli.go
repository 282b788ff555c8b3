// Package cli holds what the countertheme binaries share: version stamps and
// exit codes.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

// Version of the countertheme tools.
const Version = "0.1.0"

// Exit codes for different error types
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitPanic       = 101
	ExitInvalidArgs = 105
	ExitIOError     = 106
	ExitInvalidData = 107
	ExitCanceled    = 130
)

// BuildTimestamp returns the VCS commit time from build info, falling back
// to the binary's modification time.
func BuildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// PrintVersion writes the version banner for the named binary.
func PrintVersion(w io.Writer, name string) {
	fmt.Fprintf(w, "%s %s\n", name, Version)
	fmt.Fprintf(w, "Built: %s\n", BuildTimestamp())
}

// ExitCode maps a packaging error onto a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, themeerrors.ErrCanceled):
		return ExitCanceled
	case errors.Is(err, themeerrors.ErrInvalidRequest), errors.Is(err, themeerrors.ErrUnsupportedFormat):
		return ExitInvalidArgs
	case errors.Is(err, themeerrors.ErrDecodeFailure):
		return ExitInvalidData
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return ExitIOError
	default:
		return ExitFailure
	}
}
