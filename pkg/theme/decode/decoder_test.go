package decode

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/countertheme/internal/testimage"
	"github.com/provide-io/countertheme/pkg/theme"
	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

func pixelAt(f theme.Frame, x, y int) color.RGBA {
	return f.Image().RGBAAt(x, y)
}

func TestDecoder_AnimatedGIF(t *testing.T) {
	data := testimage.AnimatedGIF(t, 32, 24, 10, 20, 5)

	frames, err := NewDecoder().Decode(context.Background(), theme.SourceAsset{Bytes: data, MimeType: "image/gif"})
	require.NoError(t, err)
	require.Len(t, frames, 3)

	wantTicks := []int{100, 200, 50}
	for i, f := range frames {
		assert.Equal(t, i, f.Index, "frame %d index", i)
		assert.Equal(t, 32, f.Width, "frame %d width", i)
		assert.Equal(t, 24, f.Height, "frame %d height", i)
		assert.Len(t, f.Pixels, 32*24*4, "frame %d buffer size", i)
		assert.Equal(t, wantTicks[i], f.DurationTicks, "frame %d ticks", i)
	}
	assert.NotEqual(t, frames[0].Pixels, frames[1].Pixels, "frames must be independent snapshots")
}

func TestDecoder_ZeroDelayDefaultsToTenTicks(t *testing.T) {
	data := testimage.AnimatedGIF(t, 8, 8, 0, 3)

	frames, err := NewDecoder().Decode(context.Background(), theme.SourceAsset{Bytes: data, MimeType: theme.MimeGIF})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 10, frames[0].DurationTicks)
	assert.Equal(t, 30, frames[1].DurationTicks)
}

func TestDecoder_PartialFrameKeepsPreviousPixels(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	patch := image.Rect(2, 1, 5, 4)
	data := testimage.GIF(t, 8, 6, []testimage.SubFrame{
		{Rect: image.Rect(0, 0, 8, 6), Fill: red, Delay: 4},
		{Rect: patch, Fill: blue, Delay: 4},
	})

	frames, err := NewDecoder().Decode(context.Background(), theme.SourceAsset{Bytes: data, MimeType: theme.MimeGIF})
	require.NoError(t, err)
	require.Len(t, frames, 2)

	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			got := pixelAt(frames[1], x, y)
			if image.Pt(x, y).In(patch) {
				assert.Equal(t, blue, got, "patched pixel (%d,%d)", x, y)
			} else {
				assert.Equal(t, pixelAt(frames[0], x, y), got, "untouched pixel (%d,%d)", x, y)
			}
		}
	}
	assert.Equal(t, red, pixelAt(frames[0], 3, 2), "first frame must not see the later patch")
}

func TestDecoder_TransparentPixelsKeepCanvas(t *testing.T) {
	green := color.RGBA{0, 255, 0, 255}
	data := testimage.GIF(t, 4, 4, []testimage.SubFrame{
		{Rect: image.Rect(0, 0, 4, 4), Fill: green, Delay: 2},
		{Rect: image.Rect(0, 0, 4, 4), Fill: nil, Delay: 2},
	})

	frames, err := NewDecoder().Decode(context.Background(), theme.SourceAsset{Bytes: data, MimeType: theme.MimeGIF})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, frames[0].Pixels, frames[1].Pixels)
}

func TestDecoder_AllTransparentSingleFrameIsValid(t *testing.T) {
	data := testimage.GIF(t, 5, 5, []testimage.SubFrame{
		{Rect: image.Rect(0, 0, 5, 5), Fill: nil, Delay: 0},
	})

	frames, err := NewDecoder().Decode(context.Background(), theme.SourceAsset{Bytes: data, MimeType: theme.MimeGIF})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, 10, frames[0].DurationTicks)
	for _, b := range frames[0].Pixels {
		require.Zero(t, b)
	}
}

func TestDecoder_StillImages(t *testing.T) {
	testCases := []struct {
		name     string
		mimeType string
		data     []byte
	}{
		{name: "png", mimeType: "image/png", data: testimage.PNG(t, 12, 7)},
		{name: "jpeg", mimeType: "image/jpeg", data: testimage.JPEG(t, 12, 7)},
		{name: "mime with parameters", mimeType: " Image/PNG; charset=binary", data: testimage.PNG(t, 12, 7)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frames, err := NewDecoder().Decode(context.Background(), theme.SourceAsset{Bytes: tc.data, MimeType: tc.mimeType})
			require.NoError(t, err)
			require.Len(t, frames, 1)
			assert.Equal(t, 0, frames[0].Index)
			assert.Equal(t, 12, frames[0].Width)
			assert.Equal(t, 7, frames[0].Height)
			assert.Equal(t, theme.StaticFrameTicks, frames[0].DurationTicks)
			assert.Len(t, frames[0].Pixels, 12*7*4)
		})
	}
}

func TestDecoder_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		asset   theme.SourceAsset
		wantErr error
	}{
		{
			name:    "zero-byte gif",
			asset:   theme.SourceAsset{Bytes: nil, MimeType: theme.MimeGIF},
			wantErr: themeerrors.ErrEmptyFrameSet,
		},
		{
			name:    "frame-less gif",
			asset:   theme.SourceAsset{Bytes: testimage.EmptyGIF(), MimeType: theme.MimeGIF},
			wantErr: themeerrors.ErrEmptyFrameSet,
		},
		{
			name:    "garbage gif",
			asset:   theme.SourceAsset{Bytes: []byte("not a gif at all"), MimeType: theme.MimeGIF},
			wantErr: themeerrors.ErrDecodeFailure,
		},
		{
			name:    "garbage webp",
			asset:   theme.SourceAsset{Bytes: []byte("RIFF....WEBPjunk"), MimeType: theme.MimeWEBP},
			wantErr: themeerrors.ErrDecodeFailure,
		},
		{
			name:    "bmp",
			asset:   theme.SourceAsset{Bytes: []byte("BM"), MimeType: "image/bmp"},
			wantErr: themeerrors.ErrUnsupportedFormat,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDecoder().Decode(context.Background(), tc.asset)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDecoder_EmptyFrameSetIsDecodeFailure(t *testing.T) {
	_, err := NewDecoder().Decode(context.Background(), theme.SourceAsset{MimeType: theme.MimePNG})
	require.ErrorIs(t, err, themeerrors.ErrEmptyFrameSet)
	assert.ErrorIs(t, err, themeerrors.ErrDecodeFailure)
}

func TestDecoder_UnsupportedFormatCarriesMimeType(t *testing.T) {
	_, err := NewDecoder().Decode(context.Background(), theme.SourceAsset{Bytes: []byte{1}, MimeType: "video/mp4"})

	var unsupported *themeerrors.UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "video/mp4", unsupported.MimeType)
}

func TestDecoder_CanceledContext(t *testing.T) {
	data := testimage.AnimatedGIF(t, 8, 8, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDecoder().Decode(ctx, theme.SourceAsset{Bytes: data, MimeType: theme.MimeGIF})
	assert.ErrorIs(t, err, themeerrors.ErrCanceled)
}

func TestDecodeGIF_TimeoutDuringParse(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	g := &GIFDecoder{decodeAll: func(io.Reader) (*gif.GIF, error) {
		<-release
		return nil, io.ErrUnexpectedEOF
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.DecodeGIF(ctx, testimage.AnimatedGIF(t, 8, 8, 1))
	require.ErrorIs(t, err, themeerrors.ErrTimeout)
	assert.Equal(t, "Timeout", themeerrors.Reason(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDecodeGIF_CanceledBeforeParse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&GIFDecoder{}).DecodeGIF(ctx, []byte("GIF89a garbage"))
	assert.ErrorIs(t, err, themeerrors.ErrCanceled)
}

func TestSupported(t *testing.T) {
	for _, m := range []string{"image/gif", "image/png", "image/jpeg", "image/webp", "IMAGE/GIF"} {
		assert.True(t, Supported(m), m)
	}
	for _, m := range []string{"", "image/bmp", "image/apng", "video/webm"} {
		assert.False(t, Supported(m), m)
	}
}
