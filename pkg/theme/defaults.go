package theme

// =================================
// Request defaults
// =================================
const (
	DefaultTargetWidth   = 300
	DefaultTargetHeight  = 250
	DefaultPreviewWidth  = 200
	DefaultPreviewHeight = 50
	DefaultThemeName     = "Custom Theme"

	// MaxDimension caps requested output sizes.
	MaxDimension = 4096
)

// =================================
// Timing
// =================================
const (
	// StaticFrameTicks is the duration given to the single frame of a still image.
	StaticFrameTicks = 100

	// TicksPerCentisecond converts GIF delays to descriptor ticks.
	TicksPerCentisecond = 10

	// MinGIFDelay replaces zero or missing GIF delays.
	MinGIFDelay = 1
)

// =================================
// MIME types
// =================================
const (
	MimeGIF  = "image/gif"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeWEBP = "image/webp"
)

// =================================
// Template placeholders
// =================================
const (
	ThemeNamePlaceholder = "${themeName}"
)
