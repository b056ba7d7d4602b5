package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrUnsupportedFormat reports an archive whose extension names no known
// container format.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// Entry describes one file inside a tar stream. The entry body is readable
// from the Reader only until the next call to Next.
type Entry struct {
	Path    string
	Size    int64
	Regular bool
}

// Reader streams entries out of a tar archive, decompressing gzip or zstd
// containers on the fly. The underlying file is read in a single forward
// pass; nothing is materialized on disk or in memory beyond the decompressor
// window.
type Reader struct {
	tr      *tar.Reader
	closers []io.Closer
}

// Open opens path and prepares entry iteration. The container format is
// chosen by file name: .tar.gz/.tgz (gzip), .tar.zst (zstd), .tar (plain).
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	reader := &Reader{closers: []io.Closer{file}}

	var stream io.Reader
	switch {
	case hasSuffixFold(path, ".tar.gz"), hasSuffixFold(path, ".tgz"):
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		reader.closers = append(reader.closers, gz)
		stream = gz
	case hasSuffixFold(path, ".tar.zst"):
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		reader.closers = append(reader.closers, dec.IOReadCloser())
		stream = dec
	case hasSuffixFold(path, ".tar"):
		stream = file
	default:
		file.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	reader.tr = tar.NewReader(stream)
	return reader, nil
}

// Next advances to the next entry. It returns io.EOF after the last entry.
func (r *Reader) Next() (Entry, error) {
	header, err := r.tr.Next()
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Path:    header.Name,
		Size:    header.Size,
		Regular: header.Typeflag == tar.TypeReg,
	}, nil
}

// Read reads from the current entry's body.
func (r *Reader) Read(p []byte) (int, error) {
	return r.tr.Read(p)
}

// Close releases the decompressor and the underlying file.
func (r *Reader) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Supported reports whether path names a container format Open understands.
func Supported(path string) bool {
	return hasSuffixFold(path, ".tar.gz") ||
		hasSuffixFold(path, ".tgz") ||
		hasSuffixFold(path, ".tar.zst") ||
		hasSuffixFold(path, ".tar")
}

// Discover returns the supported archives directly inside dir, sorted by
// name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var archives []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if Supported(entry.Name()) {
			archives = append(archives, filepath.Join(dir, entry.Name()))
		}
	}
	return archives, nil
}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	return strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
