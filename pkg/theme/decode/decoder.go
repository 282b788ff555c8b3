// Package decode turns uploaded image bytes into full-canvas RGBA frames.
package decode

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/provide-io/countertheme/pkg/theme"
	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

// FrameDecoder decodes a source asset into an ordered frame list.
type FrameDecoder interface {
	Decode(ctx context.Context, asset theme.SourceAsset) ([]theme.Frame, error)
}

// Decoder dispatches decoding to the GIF or still-image path based on MIME type.
type Decoder struct {
	gif    *GIFDecoder
	static *StaticDecoder
}

// NewDecoder creates a decoder for GIF, PNG, JPEG and WEBP input.
func NewDecoder() *Decoder {
	return &Decoder{
		gif:    &GIFDecoder{},
		static: &StaticDecoder{},
	}
}

// NormalizeMimeType lowercases a MIME type and strips parameters.
func NormalizeMimeType(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// Supported reports whether the MIME type can be decoded.
func Supported(mimeType string) bool {
	switch NormalizeMimeType(mimeType) {
	case theme.MimeGIF, theme.MimePNG, theme.MimeJPEG, theme.MimeWEBP:
		return true
	default:
		return false
	}
}

// CheckFormat returns an *errors.UnsupportedFormatError for MIME types the
// decoder does not handle.
func CheckFormat(mimeType string) error {
	if !Supported(mimeType) {
		return &themeerrors.UnsupportedFormatError{MimeType: mimeType}
	}
	return nil
}

// Decode dispatches to the appropriate decoder based on MIME type.
func (d *Decoder) Decode(ctx context.Context, asset theme.SourceAsset) ([]theme.Frame, error) {
	if err := CheckFormat(asset.MimeType); err != nil {
		return nil, err
	}
	if len(asset.Bytes) == 0 {
		return nil, fmt.Errorf("%w: input is empty", themeerrors.ErrEmptyFrameSet)
	}

	var (
		frames []theme.Frame
		err    error
	)
	switch mimeType := NormalizeMimeType(asset.MimeType); mimeType {
	case theme.MimeGIF:
		frames, err = d.gif.DecodeGIF(ctx, asset.Bytes)
	default:
		frames, err = d.static.DecodeStatic(mimeType, asset.Bytes)
	}
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, themeerrors.ErrEmptyFrameSet
	}
	return frames, nil
}

// toRGBA copies img into a new RGBA buffer anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}
