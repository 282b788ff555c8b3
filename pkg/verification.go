package pkg

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/countertheme/pkg/logging"
	"github.com/provide-io/countertheme/pkg/theme"
	"github.com/provide-io/countertheme/pkg/theme/archive"
)

// VerifyThemeWithLogger checks a theme package on disk and logs one line
// per entry with its checksum.
func VerifyThemeWithLogger(path string, algorithm theme.ChecksumAlgorithm, logger hclog.Logger) (*archive.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme package: %w", err)
	}
	return VerifyThemeData(data, algorithm, logger)
}

// VerifyThemeData checks an in-memory theme package.
func VerifyThemeData(data []byte, algorithm theme.ChecksumAlgorithm, logger hclog.Logger) (*archive.Report, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger.Info("🔍 Verifying theme package", "size", len(data))

	report, err := archive.Inspect(data, algorithm)
	if err != nil {
		logger.Error("Failed to read archive", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNotThemePackage, err)
	}

	for _, e := range report.Entries {
		if e.Width > 0 {
			logger.Info("✓ Entry", "path", e.Path, "size", e.Size, "checksum", e.Checksum, "dimensions", fmt.Sprintf("%dx%d", e.Width, e.Height))
		} else {
			logger.Info("✓ Entry", "path", e.Path, "size", e.Size, "checksum", e.Checksum)
		}
	}

	if report.Valid() {
		logger.Info("✓ Theme verification passed",
			"frames", report.FrameCount,
			"preview", report.HasPreview,
			"width", report.Width,
			"height", report.Height)
		return report, nil
	}

	logger.Error("✗ Theme verification failed", "problem_count", len(report.Problems))
	for _, p := range report.Problems {
		logger.Error("  Verification error", "details", p)
	}
	return report, fmt.Errorf("%w: %d problems", ErrLayoutInvalid, len(report.Problems))
}

// VerifyTheme verifies a theme package with the default logger.
func VerifyTheme(path string) (*archive.Report, error) {
	logger := logging.NewLogger("countertheme-verify", logging.GetLogLevel(), nil)
	return VerifyThemeWithLogger(path, theme.ChecksumSHA256, logger)
}

// VerifyFileChecksum compares the checksum of the file at path against an
// "algorithm:hex" string.
func VerifyFileChecksum(path, expected string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	ok, err := theme.VerifyChecksum(data, expected)
	if err != nil {
		return err
	}
	if !ok {
		algorithm, _, _ := theme.ParseChecksum(expected)
		return fmt.Errorf("%w: %s has %s", ErrChecksumMismatch, path, theme.CalculateChecksum(data, algorithm))
	}
	return nil
}
