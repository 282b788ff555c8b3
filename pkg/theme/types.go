// Package theme holds the data model and archive naming conventions shared by
// the encounter-counter theme packager.
package theme

import (
	"fmt"
	"image"
	"strings"

	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

// SourceAsset is a user-supplied image and the MIME type it was declared as.
type SourceAsset struct {
	Bytes    []byte
	MimeType string
}

// Frame is one decoded frame at the source's native resolution.
//
// Pixels is row-major RGBA with 4 bytes per pixel and a stride of 4*Width,
// using the premultiplied layout of image.RGBA.
type Frame struct {
	Index         int
	Width         int
	Height        int
	Pixels        []byte
	DurationTicks int
}

// Image exposes the frame buffer as an *image.RGBA. The buffer is shared.
func (f Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pixels,
		Stride: 4 * f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// ResizedFrame is a Frame resampled to the theme resolution and encoded as PNG.
type ResizedFrame struct {
	Index         int
	Width         int
	Height        int
	Encoded       []byte
	DurationTicks int
}

// PreviewImage is the minimised still shown while the counter is collapsed.
type PreviewImage struct {
	Encoded []byte
}

// ThemeRequest holds the user parameters for one packaging run.
type ThemeRequest struct {
	TargetWidth   int
	TargetHeight  int
	PreviewWidth  int
	PreviewHeight int
	ThemeName     string

	// PreviewSource is an alternate image for the minimised preview.
	// When nil the first resized frame is used.
	PreviewSource *SourceAsset
}

// WithDefaults returns a copy of r with zero fields replaced by defaults.
func (r ThemeRequest) WithDefaults() ThemeRequest {
	if r.TargetWidth == 0 {
		r.TargetWidth = DefaultTargetWidth
	}
	if r.TargetHeight == 0 {
		r.TargetHeight = DefaultTargetHeight
	}
	if r.PreviewWidth == 0 {
		r.PreviewWidth = DefaultPreviewWidth
	}
	if r.PreviewHeight == 0 {
		r.PreviewHeight = DefaultPreviewHeight
	}
	if strings.TrimSpace(r.ThemeName) == "" {
		r.ThemeName = DefaultThemeName
	}
	return r
}

// Validate checks that every dimension is positive.
func (r ThemeRequest) Validate() error {
	dims := []struct {
		name  string
		value int
	}{
		{"target width", r.TargetWidth},
		{"target height", r.TargetHeight},
		{"preview width", r.PreviewWidth},
		{"preview height", r.PreviewHeight},
	}
	for _, d := range dims {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", themeerrors.ErrInvalidRequest, d.name, d.value)
		}
		if d.value > MaxDimension {
			return fmt.Errorf("%w: %s exceeds %d, got %d", themeerrors.ErrInvalidRequest, d.name, MaxDimension, d.value)
		}
	}
	if r.PreviewSource != nil && len(r.PreviewSource.Bytes) == 0 {
		return fmt.Errorf("%w: preview source is empty", themeerrors.ErrInvalidRequest)
	}
	return nil
}
