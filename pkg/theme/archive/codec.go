package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
)

// ZIP compression method identifiers
const (
	MethodStore   uint16 = zip.Store   // no compression
	MethodDeflate uint16 = zip.Deflate // DEFLATE (default)
	MethodBzip2   uint16 = 12          // BZIP2, APPNOTE 4.4.5
)

// Codec provides the compressor and decompressor for one ZIP method.
type Codec interface {
	// ID returns the ZIP method identifier
	ID() uint16

	// Name returns the configuration name
	Name() string

	// NewWriter wraps out with a compressing writer
	NewWriter(out io.Writer) (io.WriteCloser, error)

	// NewReader wraps in with a decompressing reader
	NewReader(in io.Reader) io.ReadCloser
}

// Registry maps method IDs to codecs. Store needs no codec.
var Registry = map[uint16]Codec{
	MethodDeflate: deflateCodec{level: flate.BestCompression},
	MethodBzip2:   bzip2Codec{level: bzip2.BestCompression},
}

// ParseMethod resolves a compression name ("store", "deflate", "bzip2").
// An empty name selects deflate.
func ParseMethod(name string) (uint16, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "deflate":
		return MethodDeflate, nil
	case "store", "none", "raw":
		return MethodStore, nil
	case "bzip2", "bz2":
		return MethodBzip2, nil
	default:
		return 0, fmt.Errorf("unknown compression method %q (want one of %s)", name, strings.Join(MethodNames(), ", "))
	}
}

// MethodName returns the configuration name of a method ID.
func MethodName(id uint16) string {
	if id == MethodStore {
		return "store"
	}
	if c, ok := Registry[id]; ok {
		return c.Name()
	}
	return fmt.Sprintf("unknown_%d", id)
}

// MethodNames lists the supported compression names.
func MethodNames() []string {
	names := []string{MethodName(MethodStore)}
	for _, c := range Registry {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

type deflateCodec struct {
	level int
}

func (c deflateCodec) ID() uint16   { return MethodDeflate }
func (c deflateCodec) Name() string { return "deflate" }

func (c deflateCodec) NewWriter(out io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(out, c.level)
}

func (c deflateCodec) NewReader(in io.Reader) io.ReadCloser {
	return flate.NewReader(in)
}

type bzip2Codec struct {
	level int
}

func (c bzip2Codec) ID() uint16   { return MethodBzip2 }
func (c bzip2Codec) Name() string { return "bzip2" }

func (c bzip2Codec) NewWriter(out io.Writer) (io.WriteCloser, error) {
	bw, err := bzip2.NewWriter(out, &bzip2.WriterConfig{Level: c.level})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 writer: %w", err)
	}
	return bw, nil
}

func (c bzip2Codec) NewReader(in io.Reader) io.ReadCloser {
	br, err := bzip2.NewReader(in, &bzip2.ReaderConfig{})
	if err != nil {
		return errReader{err: fmt.Errorf("creating bzip2 reader: %w", err)}
	}
	return br
}

// errReader defers a constructor error to the first Read, since
// zip.Decompressor cannot return one.
type errReader struct {
	err error
}

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
func (r errReader) Close() error             { return nil }
