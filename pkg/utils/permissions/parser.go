// Package permissions parses the octal file modes accepted in configuration.
package permissions

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

const (
	// DefaultEntryPerms is recorded on archive entries.
	DefaultEntryPerms fs.FileMode = 0o644

	// DefaultOutputPerms is applied to written theme packages.
	DefaultOutputPerms fs.FileMode = 0o644
)

// ParseFileMode parses an octal permission string such as "644", "0644" or
// "0o644". An empty string yields fallback. Only permission bits are
// accepted.
func ParseFileMode(s string, fallback fs.FileMode) (fs.FileMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0")
	if digits == "" {
		return 0, fmt.Errorf("invalid permission string %q: no permission bits", s)
	}

	val, err := strconv.ParseUint(digits, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if val > uint64(fs.ModePerm) {
		return 0, fmt.Errorf("invalid permission string %q: exceeds 0777", s)
	}
	if val&0o400 == 0 {
		return 0, fmt.Errorf("invalid permission string %q: owner must be able to read", s)
	}
	return fs.FileMode(val), nil
}

// FormatOctal formats a mode as a 4-digit octal string.
func FormatOctal(mode fs.FileMode) string {
	return fmt.Sprintf("%04o", uint32(mode.Perm()))
}

// IsExecutable reports whether the owner execute bit is set.
func IsExecutable(mode fs.FileMode) bool {
	return mode&0o100 != 0
}
