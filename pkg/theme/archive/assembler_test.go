package archive

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/countertheme/internal/testimage"
	"github.com/provide-io/countertheme/pkg/theme"
	"github.com/provide-io/countertheme/pkg/theme/descriptor"
	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

func testLayout(t *testing.T, n int, withPreview bool) Layout {
	t.Helper()
	frames := make([]theme.ResizedFrame, n)
	for i := range frames {
		frames[i] = theme.ResizedFrame{
			Index:         i,
			Width:         6,
			Height:        4,
			Encoded:       testimage.PNG(t, 6, 4),
			DurationTicks: 10 * (i + 1),
		}
	}
	l := Layout{
		Frames:     frames,
		Descriptor: descriptor.Build(frames, "</themes>\n"),
		Info:       `<info name="Test"/>`,
	}
	if n > 0 {
		l.Icon = frames[0].Encoded
	}
	if withPreview {
		l.Preview = testimage.PNG(t, 3, 2)
	}
	return l
}

func paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestAssemble_EntryLayout(t *testing.T) {
	a, err := NewAssembler(Options{})
	require.NoError(t, err)

	data, err := a.Assemble(testLayout(t, 3, true))
	require.NoError(t, err)

	entries, err := ReadEntries(data)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"data/anim/frame-00001.png",
		"data/anim/frame-00002.png",
		"data/anim/frame-00003.png",
		"icon.png",
		"data/unexpanded/minimised.png",
		"data/custom-counter.xml",
		"info.xml",
	}, paths(entries))
}

func TestAssemble_EntryCount(t *testing.T) {
	a, err := NewAssembler(Options{})
	require.NoError(t, err)

	for _, n := range []int{1, 2, 10} {
		withPreview, err := a.Assemble(testLayout(t, n, true))
		require.NoError(t, err)
		entries, err := ReadEntries(withPreview)
		require.NoError(t, err)
		assert.Len(t, entries, n+4, "%d frames with preview", n)

		withoutPreview, err := a.Assemble(testLayout(t, n, false))
		require.NoError(t, err)
		entries, err = ReadEntries(withoutPreview)
		require.NoError(t, err)
		assert.Len(t, entries, n+3, "%d frames without preview", n)
	}
}

func TestAssemble_EmptyPreviewIsAbsent(t *testing.T) {
	a, err := NewAssembler(Options{})
	require.NoError(t, err)

	layout := testLayout(t, 2, false)
	layout.Preview = []byte{}

	data, err := a.Assemble(layout)
	require.NoError(t, err)
	entries, err := ReadEntries(data)
	require.NoError(t, err)
	assert.Len(t, entries, 2+3)
	assert.NotContains(t, paths(entries), theme.PreviewPath)
}

func TestAssemble_FramePathsMatchDescriptor(t *testing.T) {
	layout := testLayout(t, 4, true)
	a, err := NewAssembler(Options{})
	require.NoError(t, err)
	data, err := a.Assemble(layout)
	require.NoError(t, err)

	report, err := Inspect(data, theme.ChecksumSHA256)
	require.NoError(t, err)
	assert.True(t, report.Valid(), "problems: %v", report.Problems)
	assert.Equal(t, 4, report.FrameCount)
	assert.Equal(t, []int{10, 20, 30, 40}, report.Durations)
}

func TestAssemble_Rejects(t *testing.T) {
	dupFrames := testLayout(t, 2, false)
	dupFrames.Frames[1].Index = 0

	noIcon := testLayout(t, 2, false)
	noIcon.Icon = nil

	testCases := []struct {
		name    string
		layout  Layout
		wantErr error
	}{
		{name: "zero frames", layout: testLayout(t, 0, true), wantErr: themeerrors.ErrEmptyLayout},
		{name: "duplicate frame index", layout: dupFrames, wantErr: themeerrors.ErrDuplicateEntry},
		{name: "missing icon", layout: noIcon, wantErr: themeerrors.ErrAssembleFailure},
	}

	a, err := NewAssembler(Options{})
	require.NoError(t, err)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := a.Assemble(tc.layout)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, data)
		})
	}
}

func TestAssemble_EmptyLayoutIsEmptyFrameSet(t *testing.T) {
	a, err := NewAssembler(Options{})
	require.NoError(t, err)
	_, err = a.Assemble(Layout{})
	assert.ErrorIs(t, err, themeerrors.ErrEmptyFrameSet)
}

func TestAssemble_CompressionMethods(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "archive_test",
		Level: hclog.Trace,
	})

	testCases := []struct {
		name   string
		method uint16
	}{
		{name: "", method: MethodDeflate},
		{name: "deflate", method: MethodDeflate},
		{name: "store", method: MethodStore},
		{name: "bzip2", method: MethodBzip2},
	}

	layout := testLayout(t, 2, true)
	want := layout.Entries()
	for _, tc := range testCases {
		t.Run("method_"+tc.name, func(t *testing.T) {
			a, err := NewAssembler(Options{Compression: tc.name})
			require.NoError(t, err)
			assert.Equal(t, tc.method, a.Method())

			data, err := a.Assemble(layout)
			require.NoError(t, err)
			logger.Debug("📦 Assembled archive", "method", MethodName(tc.method), "size", len(data))

			zr, err := NewReader(data)
			require.NoError(t, err)
			for _, f := range zr.File {
				assert.Equal(t, tc.method, f.Method, f.Name)
			}

			got, err := ReadEntries(data)
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].Path, got[i].Path)
				assert.True(t, bytes.Equal(want[i].Data, got[i].Data), want[i].Path)
			}
		})
	}

	_, err := NewAssembler(Options{Compression: "zstd"})
	assert.Error(t, err)
}

func TestAssemble_Deterministic(t *testing.T) {
	layout := testLayout(t, 3, true)
	a, err := NewAssembler(Options{})
	require.NoError(t, err)

	first, err := a.Assemble(layout)
	require.NoError(t, err)
	second, err := a.Assemble(layout)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))
}

func TestAssemble_HeaderMetadata(t *testing.T) {
	stamp := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	a, err := NewAssembler(Options{ModTime: stamp, FileMode: 0o600})
	require.NoError(t, err)

	data, err := a.Assemble(testLayout(t, 1, false))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		assert.True(t, f.Modified.Equal(stamp), "%s modified %v", f.Name, f.Modified)
		assert.Equal(t, "-rw-------", f.Mode().String(), f.Name)
	}
}

func TestParseMethod(t *testing.T) {
	for name, want := range map[string]uint16{
		"":        MethodDeflate,
		"DEFLATE": MethodDeflate,
		"store":   MethodStore,
		"none":    MethodStore,
		"bz2":     MethodBzip2,
	} {
		got, err := ParseMethod(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	assert.Equal(t, []string{"bzip2", "deflate", "store"}, MethodNames())
}
