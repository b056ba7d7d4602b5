package dataset

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"orchard/internal/pipeline"
)

func TestReaderStreamsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	body := "id,university\n1,Oxford\n2,\"Cambridge, UK\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	if !reflect.DeepEqual(r.Columns(), []string{"id", "university"}) {
		t.Fatalf("unexpected columns: %v", r.Columns())
	}

	indices, err := r.Header().Require("university", "id")
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if indices[0] != 1 || indices[1] != 0 {
		t.Fatalf("unexpected indices: %v", indices)
	}

	var universities []string
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		universities = append(universities, row[indices[0]])
	}
	if !reflect.DeepEqual(universities, []string{"Oxford", "Cambridge, UK"}) {
		t.Fatalf("unexpected values: %v", universities)
	}
}

func TestHeaderRequireMissingColumn(t *testing.T) {
	header := Header{"id": 0}
	_, err := header.Require("id", "university")
	if !errors.Is(err, pipeline.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestWriterCommitPublishesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := NewWriter(path, []string{"a", "b"})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Fatal("target must not exist before Commit")
	}
	if err := w.Write([]string{"1", "2"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if w.Rows() != 1 {
		t.Fatalf("expected 1 row, got %d", w.Rows())
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Fatalf("unexpected contents: %q", data)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file should be gone, stat err: %v", err)
	}
}

func TestWriterDiscardRemovesTemp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewWriter(path, []string{"a"})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.Discard()

	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file should be removed, stat err: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("target should not exist, stat err: %v", err)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := OpenReader(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
