package decode

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"

	"github.com/provide-io/countertheme/pkg/theme"
	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

// StaticDecoder decodes still PNG, JPEG and WEBP images into a single frame.
type StaticDecoder struct{}

// DecodeStatic decodes a still image at its native resolution. JPEG EXIF
// orientation is applied so the frame is upright.
func (s *StaticDecoder) DecodeStatic(mimeType string, data []byte) ([]theme.Frame, error) {
	var (
		img image.Image
		err error
	)
	switch mimeType {
	case theme.MimePNG:
		img, err = png.Decode(bytes.NewReader(data))
	case theme.MimeJPEG:
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	case theme.MimeWEBP:
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return nil, &themeerrors.UnsupportedFormatError{MimeType: mimeType}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", themeerrors.ErrDecodeFailure, mimeType, err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: %s has zero size", themeerrors.ErrEmptyFrameSet, mimeType)
	}

	rgba := toRGBA(img)
	return []theme.Frame{{
		Index:         0,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Pixels:        rgba.Pix,
		DurationTicks: theme.StaticFrameTicks,
	}}, nil
}
