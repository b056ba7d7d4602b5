package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"orchard/internal/pipeline"
)

// Header maps column names to their positions in a CSV row.
type Header map[string]int

// Require returns the index of each named column, or an ErrMissingField
// error naming the first column the header lacks.
func (h Header) Require(columns ...string) ([]int, error) {
	indices := make([]int, len(columns))
	for i, column := range columns {
		idx, ok := h[column]
		if !ok {
			return nil, fmt.Errorf("%w: column %q not present", pipeline.ErrMissingField, column)
		}
		indices[i] = idx
	}
	return indices, nil
}

// Reader streams rows out of a CSV file after consuming its header.
type Reader struct {
	file    *os.File
	csv     *csv.Reader
	columns []string
	header  Header
}

// OpenReader opens path and reads the header row.
func OpenReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(file)
	cr.ReuseRecord = true

	columns, err := cr.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	header := make(Header, len(columns))
	owned := make([]string, len(columns))
	copy(owned, columns)
	for i, column := range owned {
		header[column] = i
	}
	return &Reader{file: file, csv: cr, columns: owned, header: header}, nil
}

// Columns returns the header row in file order.
func (r *Reader) Columns() []string {
	return r.columns
}

// Header returns the column index lookup.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next data row. The returned slice is reused between
// calls; copy values that must outlive the iteration. io.EOF signals the end
// of the file.
func (r *Reader) Next() ([]string, error) {
	return r.csv.Read()
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Writer writes a CSV file through a temp path that is renamed into place on
// Commit, so readers never observe a half-written dataset.
type Writer struct {
	file *os.File
	csv  *csv.Writer
	path string
	tmp  string
	rows int
}

// NewWriter creates the temp file and writes the header row.
func NewWriter(path string, columns []string) (*Writer, error) {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	w := &Writer{file: file, csv: csv.NewWriter(file), path: path, tmp: tmp}
	if err := w.csv.Write(columns); err != nil {
		w.Discard()
		return nil, fmt.Errorf("write header of %s: %w", path, err)
	}
	return w, nil
}

// Write appends one data row.
func (w *Writer) Write(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

// Commit flushes, closes, and renames the temp file over the target path.
func (w *Writer) Commit() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.Discard()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmp)
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	if err := os.Rename(w.tmp, w.path); err != nil {
		os.Remove(w.tmp)
		return fmt.Errorf("publish %s: %w", w.path, err)
	}
	return nil
}

// Discard abandons the write and removes the temp file.
func (w *Writer) Discard() {
	w.file.Close()
	os.Remove(w.tmp)
}
