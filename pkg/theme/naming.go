package theme

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Archive layout. Only the number of frame entries varies between packages.
const (
	DataDir        = "data"
	AnimDir        = "data/anim"
	IconPath       = "icon.png"
	PreviewPath    = "data/unexpanded/minimised.png"
	DescriptorPath = "data/custom-counter.xml"
	InfoPath       = "info.xml"

	framePrefix = "frame-"
	tagPrefix   = "bg-"
	frameExt    = ".png"
	frameDigits = 5
)

// frameNumber is the 1-based, zero-padded number shared by file and tag names.
func frameNumber(index int) string {
	return fmt.Sprintf("%0*d", frameDigits, index+1)
}

// FrameFileName returns the file name of the frame at the 0-based index,
// e.g. "frame-00001.png" for index 0.
func FrameFileName(index int) string {
	return framePrefix + frameNumber(index) + frameExt
}

// FrameTagName returns the descriptor area name for the frame, e.g. "bg-00001".
func FrameTagName(index int) string {
	return tagPrefix + frameNumber(index)
}

// FrameArchivePath returns the archive entry path of the frame.
func FrameArchivePath(index int) string {
	return path.Join(AnimDir, FrameFileName(index))
}

// FrameDescriptorRef returns the frame path as referenced from the descriptor,
// which lives in the data directory.
func FrameDescriptorRef(index int) string {
	return strings.TrimPrefix(FrameArchivePath(index), DataDir+"/")
}

// ParseFrameFileName reverses FrameFileName. ok is false for names that do
// not follow the convention.
func ParseFrameFileName(name string) (index int, ok bool) {
	if !strings.HasPrefix(name, framePrefix) || !strings.HasSuffix(name, frameExt) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, framePrefix), frameExt)
	if len(digits) != frameDigits {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || strings.ContainsAny(digits, "+-") {
		return 0, false
	}
	return n - 1, true
}

// DownloadName derives the archive file name from the theme name, appending
// ".zip" unless it is already there.
func DownloadName(themeName string) string {
	name := strings.TrimSpace(themeName)
	if name == "" {
		name = DefaultThemeName
	}
	if strings.HasSuffix(strings.ToLower(name), ".zip") {
		return name
	}
	return name + ".zip"
}
