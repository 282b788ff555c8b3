package archive

import (
	"bytes"
	"fmt"
	"image/png"
	"path"
	"sort"
	"strings"

	"github.com/provide-io/countertheme/pkg/theme"
	"github.com/provide-io/countertheme/pkg/theme/descriptor"
)

// EntryInfo describes one archive entry.
type EntryInfo struct {
	Path     string
	Size     int
	Checksum string
	Width    int // PNG entries only
	Height   int // PNG entries only
}

// Report is the result of inspecting a theme package.
type Report struct {
	Entries    []EntryInfo
	FrameCount int
	HasPreview bool
	Width      int
	Height     int
	Durations  []int

	// Problems lists every layout violation found. Empty means valid.
	Problems []string
}

// Valid reports whether no problems were found.
func (r *Report) Valid() bool {
	return len(r.Problems) == 0
}

func (r *Report) problem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Inspect checks an archive against the theme layout: required entries,
// contiguous frame numbering, consistent frame sizes, and agreement between
// the descriptor and the frame entries. Only an unreadable archive is an
// error; layout violations are collected in the report.
func Inspect(data []byte, algorithm theme.ChecksumAlgorithm) (*Report, error) {
	entries, err := ReadEntries(data)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	byPath := make(map[string][]byte, len(entries))
	frameIndexes := []int{}

	for _, e := range entries {
		info := EntryInfo{
			Path:     e.Path,
			Size:     len(e.Data),
			Checksum: theme.CalculateChecksum(e.Data, algorithm),
		}
		if _, dup := byPath[e.Path]; dup {
			report.problem("duplicate entry %s", e.Path)
		}
		byPath[e.Path] = e.Data

		if strings.HasSuffix(e.Path, ".png") {
			cfg, err := png.DecodeConfig(bytes.NewReader(e.Data))
			if err != nil {
				report.problem("%s is not a valid PNG: %v", e.Path, err)
			} else {
				info.Width, info.Height = cfg.Width, cfg.Height
			}
		}
		report.Entries = append(report.Entries, info)

		switch {
		case path.Dir(e.Path) == theme.AnimDir:
			idx, ok := theme.ParseFrameFileName(path.Base(e.Path))
			if !ok {
				report.problem("unexpected file in %s: %s", theme.AnimDir, e.Path)
				continue
			}
			frameIndexes = append(frameIndexes, idx)
		case e.Path == theme.IconPath, e.Path == theme.DescriptorPath, e.Path == theme.InfoPath:
		case e.Path == theme.PreviewPath:
			report.HasPreview = true
		default:
			report.problem("unexpected entry %s", e.Path)
		}
	}

	for _, required := range []string{theme.IconPath, theme.DescriptorPath, theme.InfoPath} {
		if _, ok := byPath[required]; !ok {
			report.problem("missing required entry %s", required)
		}
	}

	sort.Ints(frameIndexes)
	report.FrameCount = len(frameIndexes)
	if report.FrameCount == 0 {
		report.problem("no frames in %s", theme.AnimDir)
	}
	for i, idx := range frameIndexes {
		if idx != i {
			report.problem("frame numbering is not contiguous: expected %s, found %s",
				theme.FrameFileName(i), theme.FrameFileName(idx))
			break
		}
	}

	inspectFrameSizes(report)

	if text, ok := byPath[theme.DescriptorPath]; ok {
		inspectDescriptor(report, string(text))
	}

	return report, nil
}

// inspectFrameSizes checks all frames and the icon share one size.
func inspectFrameSizes(report *Report) {
	for _, info := range report.Entries {
		if path.Dir(info.Path) != theme.AnimDir && info.Path != theme.IconPath {
			continue
		}
		if info.Width == 0 {
			continue
		}
		if report.Width == 0 {
			report.Width, report.Height = info.Width, info.Height
			continue
		}
		if info.Width != report.Width || info.Height != report.Height {
			report.problem("%s is %dx%d, expected %dx%d", info.Path, info.Width, info.Height, report.Width, report.Height)
		}
	}
}

func inspectDescriptor(report *Report, text string) {
	doc, err := descriptor.Parse(text)
	if err != nil {
		report.problem("descriptor: %v", err)
		return
	}

	if len(doc.Animations) != 1 {
		report.problem("descriptor declares %d animations, expected 1", len(doc.Animations))
	}
	if len(doc.Declarations) != report.FrameCount {
		report.problem("descriptor declares %d frames, archive has %d", len(doc.Declarations), report.FrameCount)
	}
	if len(doc.Frames) != report.FrameCount {
		report.problem("animation references %d frames, archive has %d", len(doc.Frames), report.FrameCount)
	}

	for i, decl := range doc.Declarations {
		if want := theme.FrameDescriptorRef(i); decl.File != want {
			report.problem("declaration %d references %q, expected %q", i, decl.File, want)
		}
		if want := theme.FrameTagName(i); decl.Tag != want {
			report.problem("declaration %d is tagged %q, expected %q", i, decl.Tag, want)
		}
	}
	for i, ref := range doc.Frames {
		if want := theme.FrameTagName(i); ref.Tag != want {
			report.problem("animation frame %d references %q, expected %q", i, ref.Tag, want)
		}
		if ref.Duration <= 0 {
			report.problem("animation frame %d has non-positive duration %d", i, ref.Duration)
		}
		report.Durations = append(report.Durations, ref.Duration)
	}
}
