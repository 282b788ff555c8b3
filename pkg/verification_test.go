package pkg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/countertheme/internal/testimage"
	"github.com/provide-io/countertheme/pkg/theme"
)

func writeTheme(t *testing.T) string {
	t.Helper()
	result, err := BuildTheme(context.Background(), theme.SourceAsset{
		Bytes:    testimage.AnimatedGIF(t, 16, 16, 10, 20, 30),
		MimeType: theme.MimeGIF,
	}, BuildOptions{Request: theme.ThemeRequest{TargetWidth: 8, TargetHeight: 8}}, testLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), result.FileName)
	require.NoError(t, os.WriteFile(path, result.Archive, 0o600))
	return path
}

func TestVerifyThemeWithLogger(t *testing.T) {
	path := writeTheme(t)

	report, err := VerifyThemeWithLogger(path, theme.ChecksumBlake2b, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, report.FrameCount)
	assert.True(t, report.HasPreview)
	assert.Equal(t, []int{100, 200, 300}, report.Durations)
	for _, e := range report.Entries {
		assert.Contains(t, e.Checksum, "blake2b:")
	}
}

func TestVerifyThemeData_Failures(t *testing.T) {
	_, err := VerifyThemeData([]byte("not a zip"), theme.ChecksumSHA256, nil)
	assert.ErrorIs(t, err, ErrNotThemePackage)

	_, err = VerifyThemeWithLogger(filepath.Join(t.TempDir(), "absent.zip"), theme.ChecksumSHA256, nil)
	assert.Error(t, err)
}

func TestVerifyFileChecksum(t *testing.T) {
	path := writeTheme(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, VerifyFileChecksum(path, theme.CalculateChecksum(data, theme.ChecksumSHA512)))
	err = VerifyFileChecksum(path, "sha256:00")
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	assert.Error(t, VerifyFileChecksum(path, "md5:00"))
}
