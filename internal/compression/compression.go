// Package compression opens optionally compressed data files, choosing the
// decoder from the file extension.
package compression

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Format is a compression format.
type Format string

const (
	None  Format = ""
	Gzip  Format = "gzip"
	Xz    Format = "xz"
	Bzip2 Format = "bzip2"
)

var extensions = map[string]Format{
	".gz":  Gzip,
	".xz":  Xz,
	".bz2": Bzip2,
}

// ErrTooLarge is returned when decompressed data exceeds the read limit.
var ErrTooLarge = errors.New("decompressed size limit exceeded")

// Detect returns the format implied by the file name's extension.
func Detect(name string) Format {
	return extensions[strings.ToLower(filepath.Ext(name))]
}

// TrimExt removes a compression extension from name, if present.
func TrimExt(name string) string {
	if Detect(name) == None {
		return name
	}
	return name[:len(name)-len(filepath.Ext(name))]
}

// NewReader wraps r with the decoder for f.
func NewReader(r io.Reader, f Format) (io.Reader, error) {
	switch f {
	case None:
		return r, nil
	case Gzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzr, nil
	case Xz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzr, nil
	case Bzip2:
		return bzip2.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression format %q", f)
	}
}

// LimitedReader reads at most Remaining bytes and then fails with
// ErrTooLarge, unlike io.LimitReader which reports a clean EOF.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// NewLimitedReader creates a LimitedReader allowing maxBytes.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{R: r, Remaining: maxBytes}
}

// Read implements io.Reader.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		// Only an error if there is more to read.
		var probe [1]byte
		if n, _ := l.R.Read(probe[:]); n > 0 {
			return 0, ErrTooLarge
		}
		return 0, io.EOF
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// ReadAll decodes r according to name's extension and returns at most
// maxBytes of decompressed data.
func ReadAll(r io.Reader, name string, maxBytes int64) ([]byte, error) {
	dr, err := NewReader(r, Detect(name))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(NewLimitedReader(dr, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(name), err)
	}
	return data, nil
}
