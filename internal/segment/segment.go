package segment

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Writer accumulates flat records for one archive and flushes them as
// numbered CSV segments once the batch threshold is reached. Writers are not
// safe for concurrent use; each archive worker owns exactly one.
type Writer struct {
	dir         string
	prefix      string
	archiveBase string
	threshold   int

	batch    []map[string]string
	index    int
	records  int
	segments []string
}

// NewWriter prepares a segment writer for one archive. Segments are named
// "<prefix>_<archiveBase>_<NNN>.csv" inside dir, numbered from zero.
func NewWriter(dir, prefix, archiveBase string, threshold int) *Writer {
	if threshold < 1 {
		threshold = 1
	}
	return &Writer{
		dir:         dir,
		prefix:      prefix,
		archiveBase: archiveBase,
		threshold:   threshold,
		batch:       make([]map[string]string, 0, threshold),
	}
}

// Append buffers one record, flushing the batch when it reaches the
// threshold.
func (w *Writer) Append(record map[string]string) error {
	w.batch = append(w.batch, record)
	if len(w.batch) >= w.threshold {
		return w.flush()
	}
	return nil
}

// Flush writes any buffered records as a final segment. Appending after
// Flush starts a new segment; an empty buffer writes nothing.
func (w *Writer) Flush() error {
	if len(w.batch) == 0 {
		return nil
	}
	return w.flush()
}

// Records returns the number of records flushed to disk so far.
func (w *Writer) Records() int {
	return w.records
}

// Segments returns the flushed segment paths in index order.
func (w *Writer) Segments() []string {
	return w.segments
}

func (w *Writer) flush() error {
	columns := collectColumns(w.batch)
	name := fmt.Sprintf("%s_%s_%03d.csv", w.prefix, w.archiveBase, w.index)
	target := filepath.Join(w.dir, name)
	tmp := target + ".tmp"

	if err := w.writeFile(tmp, columns); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish segment %s: %w", name, err)
	}

	w.index++
	w.records += len(w.batch)
	w.segments = append(w.segments, target)
	w.batch = w.batch[:0]
	return nil
}

func (w *Writer) writeFile(path string, columns []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create segment: %w", err)
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(columns); err != nil {
		file.Close()
		return fmt.Errorf("write segment header: %w", err)
	}

	row := make([]string, len(columns))
	for _, record := range w.batch {
		for i, column := range columns {
			row[i] = record[column]
		}
		if err := cw.Write(row); err != nil {
			file.Close()
			return fmt.Errorf("write segment row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush segment: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close segment: %w", err)
	}
	return nil
}

// collectColumns returns the union of keys across records, sorted so segment
// headers are deterministic.
func collectColumns(records []map[string]string) []string {
	seen := make(map[string]struct{})
	for _, record := range records {
		for key := range record {
			seen[key] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}
