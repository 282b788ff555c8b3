package pkg

import "errors"

var (
	// Verification errors 🔍
	ErrNotThemePackage  = errors.New("❌ not a theme package")
	ErrLayoutInvalid    = errors.New("❌ theme layout invalid")
	ErrChecksumMismatch = errors.New("❌ checksum mismatch")
)
