package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"strings"

	"github.com/provide-io/countertheme/pkg/theme"
	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

// image/gif reports a well-formed stream without image blocks with this message.
const gifMissingImageData = "missing image data"

// GIFDecoder decodes animated GIFs into full-canvas frames.
//
// Sub-frames are blitted onto one accumulator canvas that is never cleared,
// so a frame that only updates a sub-rectangle keeps the previous frame's
// pixels everywhere else. Transparent pixels leave the canvas untouched.
type GIFDecoder struct {
	// decodeAll parses the stream. Nil uses gif.DecodeAll.
	decodeAll func(r io.Reader) (*gif.GIF, error)
}

type parsed struct {
	stream *gif.GIF
	err    error
}

// parse runs the stream parse in its own goroutine so a canceled or
// expired context returns immediately, even mid-parse of a large GIF.
func (g *GIFDecoder) parse(ctx context.Context, data []byte) (*gif.GIF, error) {
	if err := ctx.Err(); err != nil {
		return nil, themeerrors.FromContext(err)
	}

	decodeAll := g.decodeAll
	if decodeAll == nil {
		decodeAll = gif.DecodeAll
	}

	done := make(chan parsed, 1)
	go func() {
		gifData, err := decodeAll(bytes.NewReader(data))
		done <- parsed{stream: gifData, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, themeerrors.FromContext(ctx.Err())
	case res := <-done:
		return res.stream, res.err
	}
}

// DecodeGIF decodes every sub-frame in file order.
func (g *GIFDecoder) DecodeGIF(ctx context.Context, data []byte) ([]theme.Frame, error) {
	gifData, err := g.parse(ctx, data)
	if err != nil {
		if errors.Is(err, themeerrors.ErrTimeout) || errors.Is(err, themeerrors.ErrCanceled) {
			return nil, err
		}
		if strings.Contains(err.Error(), gifMissingImageData) {
			return nil, fmt.Errorf("%w: %w", themeerrors.ErrEmptyFrameSet, err)
		}
		return nil, fmt.Errorf("%w: decoding GIF: %w", themeerrors.ErrDecodeFailure, err)
	}

	if len(gifData.Image) == 0 {
		return nil, themeerrors.ErrEmptyFrameSet
	}

	canvasBounds := logicalScreen(gifData)
	if canvasBounds.Empty() {
		return nil, fmt.Errorf("%w: GIF canvas has zero size", themeerrors.ErrEmptyFrameSet)
	}
	canvas := image.NewRGBA(canvasBounds)

	frames := make([]theme.Frame, 0, len(gifData.Image))
	for i, sub := range gifData.Image {
		select {
		case <-ctx.Done():
			return nil, themeerrors.FromContext(ctx.Err())
		default:
		}

		draw.Draw(canvas, sub.Bounds(), sub, sub.Bounds().Min, draw.Over)

		snapshot := make([]byte, len(canvas.Pix))
		copy(snapshot, canvas.Pix)

		frames = append(frames, theme.Frame{
			Index:         i,
			Width:         canvasBounds.Dx(),
			Height:        canvasBounds.Dy(),
			Pixels:        snapshot,
			DurationTicks: frameDelay(gifData, i) * theme.TicksPerCentisecond,
		})
	}

	return frames, nil
}

// logicalScreen returns the canvas rectangle. Streams with a 0x0 logical
// screen fall back to the union of all sub-frame bounds.
func logicalScreen(g *gif.GIF) image.Rectangle {
	if g.Config.Width > 0 && g.Config.Height > 0 {
		return image.Rect(0, 0, g.Config.Width, g.Config.Height)
	}
	var union image.Rectangle
	for _, sub := range g.Image {
		union = union.Union(sub.Bounds())
	}
	return image.Rect(0, 0, union.Max.X, union.Max.Y)
}

// frameDelay returns the sub-frame delay in centiseconds, never less than
// MinGIFDelay.
func frameDelay(g *gif.GIF, i int) int {
	if i < len(g.Delay) && g.Delay[i] >= theme.MinGIFDelay {
		return g.Delay[i]
	}
	return theme.MinGIFDelay
}
