package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

func TestFrameNaming(t *testing.T) {
	testCases := []struct {
		index int
		file  string
		tag   string
		path  string
		ref   string
	}{
		{0, "frame-00001.png", "bg-00001", "data/anim/frame-00001.png", "anim/frame-00001.png"},
		{9, "frame-00010.png", "bg-00010", "data/anim/frame-00010.png", "anim/frame-00010.png"},
		{12344, "frame-12345.png", "bg-12345", "data/anim/frame-12345.png", "anim/frame-12345.png"},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			assert.Equal(t, tc.file, FrameFileName(tc.index))
			assert.Equal(t, tc.tag, FrameTagName(tc.index))
			assert.Equal(t, tc.path, FrameArchivePath(tc.index))
			assert.Equal(t, tc.ref, FrameDescriptorRef(tc.index))

			index, ok := ParseFrameFileName(tc.file)
			require.True(t, ok)
			assert.Equal(t, tc.index, index)
		})
	}
}

func TestParseFrameFileName_Rejects(t *testing.T) {
	for _, name := range []string{
		"frame-00000.png",
		"frame-0001.png",
		"frame-1a234.png",
		"frame-+0001.png",
		"frame-00001.gif",
		"bg-00001.png",
		"minimised.png",
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := ParseFrameFileName(name)
			assert.False(t, ok)
		})
	}
}

func TestDownloadName(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Test Theme", "Test Theme.zip"},
		{"already.zip", "already.zip"},
		{"SHOUTY.ZIP", "SHOUTY.ZIP"},
		{"  padded  ", "padded.zip"},
		{"", "Custom Theme.zip"},
		{"zipper", "zipper.zip"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, DownloadName(tc.in))
		})
	}
}

func TestThemeRequest(t *testing.T) {
	req := ThemeRequest{}.WithDefaults()
	assert.Equal(t, ThemeRequest{
		TargetWidth:   DefaultTargetWidth,
		TargetHeight:  DefaultTargetHeight,
		PreviewWidth:  DefaultPreviewWidth,
		PreviewHeight: DefaultPreviewHeight,
		ThemeName:     DefaultThemeName,
	}, req)
	require.NoError(t, req.Validate())

	testCases := []struct {
		name   string
		mutate func(r *ThemeRequest)
	}{
		{"zero width", func(r *ThemeRequest) { r.TargetWidth = 0 }},
		{"negative preview", func(r *ThemeRequest) { r.PreviewHeight = -1 }},
		{"oversized", func(r *ThemeRequest) { r.TargetHeight = MaxDimension + 1 }},
		{"empty preview source", func(r *ThemeRequest) { r.PreviewSource = &SourceAsset{MimeType: MimePNG} }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := req
			tc.mutate(&r)
			assert.ErrorIs(t, r.Validate(), themeerrors.ErrInvalidRequest)
		})
	}
}

func TestChecksums(t *testing.T) {
	data := []byte("counter")

	for _, algo := range []ChecksumAlgorithm{ChecksumSHA256, ChecksumSHA512, ChecksumAdler32, ChecksumBlake2b} {
		t.Run(algo.String(), func(t *testing.T) {
			sum := CalculateChecksum(data, algo)
			parsed, _, err := ParseChecksum(sum)
			require.NoError(t, err)
			assert.Equal(t, algo, parsed)

			ok, err := VerifyChecksum(data, sum)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = VerifyChecksum([]byte("other"), sum)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	assert.Equal(t, "sha256:", CalculateChecksum(data, ChecksumSHA256)[:7])
	assert.Len(t, CalculateChecksum(data, ChecksumBlake2b), len("blake2b:")+64)

	_, err := ParseChecksumAlgorithm("md5")
	assert.Error(t, err)
	_, err = VerifyChecksum(data, "crc:00")
	assert.Error(t, err)
}
