// Package payload reads raw import payloads from disk, transparently
// decompressing gzip and xz files.
package payload

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/ingest"
)

// reader pairs a decompressing reader with the closers beneath it.
type reader struct {
	io.Reader
	closers []io.Closer
}

func (r *reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open returns a reader over the file's decompressed contents.
// Compression is detected by extension: .gz and .xz are unwrapped,
// anything else is read as-is.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "xz reader for %s", path)
		}
		return &reader{Reader: xzr, closers: []io.Closer{f}}, nil
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "gzip reader for %s", path)
		}
		return &reader{Reader: gzr, closers: []io.Closer{gzr, f}}, nil
	}
	return f, nil
}

// ReadFile reads a payload file, decompressing if needed.
func ReadFile(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// GuessKind infers the payload kind from the file name, ignoring a
// trailing compression extension.
func GuessKind(path string) (ingest.Kind, bool) {
	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".xz")
	switch filepath.Ext(name) {
	case ".json":
		return ingest.KindJSON, true
	case ".usfm", ".sfm":
		return ingest.KindUSFM, true
	case ".xml", ".osis":
		return ingest.KindOSIS, true
	}
	return "", false
}
