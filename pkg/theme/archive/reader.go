package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// NewReader opens an in-memory archive with decompressors for every
// supported method registered.
func NewReader(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}
	for id, codec := range Registry {
		zr.RegisterDecompressor(id, codec.NewReader)
	}
	return zr, nil
}

// ReadEntries returns the archive entries in stored order.
func ReadEntries(data []byte) ([]Entry, error) {
	zr, err := NewReader(data)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		content, err := readFile(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Path: f.Name, Data: content})
	}
	return entries, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}
