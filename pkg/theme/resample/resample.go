// Package resample scales decoded frames to theme dimensions and encodes
// them as PNG.
package resample

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"runtime"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/provide-io/countertheme/pkg/theme"
	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

// bufferPool lets concurrent PNG encodes share compressor buffers.
type bufferPool struct {
	pool sync.Pool
}

func (p *bufferPool) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *bufferPool) Put(b *png.EncoderBuffer) {
	p.pool.Put(b)
}

// Resampler resizes frames with Catmull-Rom interpolation. The whole source
// rectangle is mapped onto the whole target rectangle, so the aspect ratio is
// stretched rather than letterboxed. Safe for concurrent use.
type Resampler struct {
	interpolator draw.Interpolator
	encoder      *png.Encoder
}

// New creates a Resampler.
func New() *Resampler {
	return &Resampler{
		interpolator: draw.CatmullRom,
		encoder: &png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       &bufferPool{},
		},
	}
}

// Resize scales one frame and returns it PNG-encoded, keeping its index and
// duration.
func (r *Resampler) Resize(frame theme.Frame, width, height int) (theme.ResizedFrame, error) {
	if frame.Width <= 0 || frame.Height <= 0 || len(frame.Pixels) < 4*frame.Width*frame.Height {
		return theme.ResizedFrame{}, fmt.Errorf("%w: frame %d has invalid geometry %dx%d (%d bytes)",
			themeerrors.ErrResampleFailure, frame.Index, frame.Width, frame.Height, len(frame.Pixels))
	}

	encoded, err := r.ResizeImage(frame.Image(), width, height)
	if err != nil {
		return theme.ResizedFrame{}, fmt.Errorf("frame %d: %w", frame.Index, err)
	}

	return theme.ResizedFrame{
		Index:         frame.Index,
		Width:         width,
		Height:        height,
		Encoded:       encoded,
		DurationTicks: frame.DurationTicks,
	}, nil
}

// ResizeImage scales any image to width x height and encodes it as PNG.
func (r *Resampler) ResizeImage(src image.Image, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d must be positive", themeerrors.ErrResampleFailure, width, height)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: source image is empty", themeerrors.ErrResampleFailure)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	r.interpolator.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := r.encoder.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("%w: encoding PNG: %w", themeerrors.ErrResampleFailure, err)
	}
	return buf.Bytes(), nil
}

// ResizeEncoded decodes a PNG (such as an already resized frame) and scales it.
func (r *Resampler) ResizeEncoded(data []byte, width, height int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding PNG: %w", themeerrors.ErrResampleFailure, err)
	}
	return r.ResizeImage(src, width, height)
}

// ResizeAll resizes every frame using up to workers goroutines. Output order
// matches input order. The first failure cancels the remaining work.
func (r *Resampler) ResizeAll(ctx context.Context, frames []theme.Frame, width, height, workers int) ([]theme.ResizedFrame, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	resized := make([]theme.ResizedFrame, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, frame := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return themeerrors.FromContext(err)
			}
			out, err := r.Resize(frame, width, height)
			if err != nil {
				return err
			}
			resized[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, themeerrors.FromContext(err)
	}
	return resized, nil
}
