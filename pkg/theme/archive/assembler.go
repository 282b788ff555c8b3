// Package archive lays out theme artifacts into the ZIP structure the mod
// loader expects, and reads such archives back for verification.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/provide-io/countertheme/pkg/theme"
	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

// DefaultModTime is stamped on every entry unless overridden, so identical
// inputs produce identical archives.
var DefaultModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultFileMode is the mode recorded for entries.
const DefaultFileMode fs.FileMode = 0o644

// Layout is every artifact that goes into one theme package.
type Layout struct {
	Frames     []theme.ResizedFrame
	Icon       []byte
	Preview    []byte // empty when the package has no minimised preview
	Descriptor string
	Info       string
}

// Entry is one file of the archive.
type Entry struct {
	Path string
	Data []byte
}

// Entries returns the archive entries in write order: frames, icon,
// preview, descriptor, info.
func (l Layout) Entries() []Entry {
	entries := make([]Entry, 0, len(l.Frames)+4)
	for _, f := range l.Frames {
		entries = append(entries, Entry{Path: theme.FrameArchivePath(f.Index), Data: f.Encoded})
	}
	entries = append(entries, Entry{Path: theme.IconPath, Data: l.Icon})
	if len(l.Preview) > 0 {
		entries = append(entries, Entry{Path: theme.PreviewPath, Data: l.Preview})
	}
	entries = append(entries,
		Entry{Path: theme.DescriptorPath, Data: []byte(l.Descriptor)},
		Entry{Path: theme.InfoPath, Data: []byte(l.Info)},
	)
	return entries
}

// Validate checks the layout invariants: at least one frame, an icon, and
// no two entries sharing a path.
func (l Layout) Validate() error {
	if len(l.Frames) == 0 {
		return themeerrors.ErrEmptyLayout
	}
	if len(l.Icon) == 0 {
		return fmt.Errorf("%w: icon is missing", themeerrors.ErrAssembleFailure)
	}
	seen := make(map[string]struct{}, len(l.Frames)+4)
	for _, e := range l.Entries() {
		if _, dup := seen[e.Path]; dup {
			return fmt.Errorf("%w: %s", themeerrors.ErrDuplicateEntry, e.Path)
		}
		seen[e.Path] = struct{}{}
	}
	return nil
}

// Options configures an Assembler.
type Options struct {
	// Compression is "deflate" (default), "store" or "bzip2".
	Compression string

	// ModTime is stamped on every entry. Zero selects DefaultModTime.
	ModTime time.Time

	// FileMode is recorded for every entry. Zero selects DefaultFileMode.
	FileMode fs.FileMode
}

// Assembler serializes layouts into in-memory ZIP archives.
type Assembler struct {
	method  uint16
	modTime time.Time
	mode    fs.FileMode
}

// NewAssembler creates an Assembler.
func NewAssembler(opts Options) (*Assembler, error) {
	method, err := ParseMethod(opts.Compression)
	if err != nil {
		return nil, err
	}
	a := &Assembler{
		method:  method,
		modTime: opts.ModTime,
		mode:    opts.FileMode,
	}
	if a.modTime.IsZero() {
		a.modTime = DefaultModTime
	}
	if a.mode == 0 {
		a.mode = DefaultFileMode
	}
	return a, nil
}

// Method returns the ZIP compression method in use.
func (a *Assembler) Method() uint16 {
	return a.method
}

// Assemble writes the layout into a ZIP archive.
func (a *Assembler) Assemble(layout Layout) ([]byte, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if codec, ok := Registry[a.method]; ok {
		zw.RegisterCompressor(a.method, func(out io.Writer) (io.WriteCloser, error) {
			return codec.NewWriter(out)
		})
	}

	for _, e := range layout.Entries() {
		if err := a.writeEntry(zw, e); err != nil {
			zw.Close()
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing zip writer: %w", themeerrors.ErrAssembleFailure, err)
	}
	return buf.Bytes(), nil
}

func (a *Assembler) writeEntry(zw *zip.Writer, e Entry) error {
	header := &zip.FileHeader{
		Name:     e.Path,
		Method:   a.method,
		Modified: a.modTime,
	}
	header.SetMode(a.mode)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("%w: writing header for %s: %w", themeerrors.ErrAssembleFailure, e.Path, err)
	}
	if _, err := w.Write(e.Data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", themeerrors.ErrAssembleFailure, e.Path, err)
	}
	return nil
}
