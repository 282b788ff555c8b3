// Package errors defines the failure taxonomy of the theme packager.
package errors

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Input errors 🖼️
	ErrUnsupportedFormat = errors.New("❌ unsupported image format")
	ErrDecodeFailure     = errors.New("❌ image decode failed")
	ErrEmptyFrameSet     = fmt.Errorf("%w: no frames decoded", ErrDecodeFailure)
	ErrInvalidRequest    = errors.New("❌ invalid theme request")

	// Environment errors 🌐
	ErrTemplateFetch = errors.New("❌ template fetch failed")
	ErrTimeout       = errors.New("❌ operation timed out")
	ErrCanceled      = errors.New("❌ operation canceled")

	// Processing errors ⚙️
	ErrResampleFailure = errors.New("❌ frame resample failed")
	ErrAssembleFailure = errors.New("❌ archive assembly failed")
	ErrEmptyLayout     = fmt.Errorf("%w: %w", ErrAssembleFailure, ErrEmptyFrameSet)
	ErrDuplicateEntry  = fmt.Errorf("%w: duplicate archive entry", ErrAssembleFailure)
)

// UnsupportedFormatError carries the MIME type that was rejected so callers
// can show it to the user.
type UnsupportedFormatError struct {
	MimeType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedFormat, e.MimeType)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// FromContext converts a context error into the packager taxonomy.
// Other errors are returned unchanged.
func FromContext(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	default:
		return err
	}
}

// Reason names the taxonomy class of err, as shown in Failed(reason).
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return "UnsupportedFormat"
	case errors.Is(err, ErrEmptyFrameSet):
		return "EmptyFrameSet"
	case errors.Is(err, ErrDecodeFailure):
		return "DecodeFailure"
	case errors.Is(err, ErrTemplateFetch):
		return "TemplateFetchFailure"
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.Is(err, ErrInvalidRequest):
		return "InvalidRequest"
	case errors.Is(err, ErrResampleFailure):
		return "ResampleFailure"
	case errors.Is(err, ErrAssembleFailure):
		return "AssembleFailure"
	default:
		return "Unknown"
	}
}
