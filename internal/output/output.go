// Package output places finished theme packages on disk.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/countertheme/pkg/theme"
)

// ResolvePath decides where a theme package is written. An empty target
// means the current directory; a directory target, or one ending in a path
// separator, is joined with the download name of the theme.
func ResolvePath(target, themeName string) (string, error) {
	name := SanitizeFileName(theme.DownloadName(themeName))

	if target == "" {
		return name, nil
	}
	if strings.HasSuffix(target, string(os.PathSeparator)) || strings.HasSuffix(target, "/") {
		return filepath.Join(target, name), nil
	}

	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(target, name), nil
	case err == nil, errors.Is(err, fs.ErrNotExist):
		return target, nil
	default:
		return "", fmt.Errorf("checking output path: %w", err)
	}
}

// SanitizeFileName replaces path separators and control characters so a
// theme name cannot escape the output directory.
func SanitizeFileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, name)

	if trimmed := strings.Trim(mapped, ". "); trimmed == "" || trimmed == "zip" {
		return theme.DownloadName("")
	}
	return mapped
}

// Write stores data at path atomically: it writes a temporary file in the
// destination directory and renames it into place.
func Write(path string, data []byte, mode fs.FileMode, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	dir := filepath.Dir(path)
	logger.Debug("📁 Ensuring output directory exists", "dir", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op once the rename has succeeded.
		_ = os.Remove(tmpPath)
	}()

	logger.Debug("💾 Writing theme package", "temp", tmpPath, "size", len(data))
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	return atomicReplace(tmpPath, path, logger)
}

func atomicReplace(sourcePath, destPath string, logger hclog.Logger) error {
	logger.Debug("Performing atomic file replacement",
		"source", sourcePath,
		"dest", destPath)

	if err := os.Rename(sourcePath, destPath); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	logger.Info("✅ Theme package written", "path", destPath)
	return nil
}
