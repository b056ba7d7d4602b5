package census_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orchard/internal/census"
	"orchard/internal/testsupport"
)

func TestRunCountsFieldsPerDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	testsupport.BuildArchive(t, filepath.Join(cfg.Paths.ArchiveDir, "dump.tar.gz"), []testsupport.ArchiveFile{
		{Name: "r/educations/e1.xml", Body: "<education><organization><name>Oxford</name></organization></education>"},
		{Name: "r/educations/e2.xml", Body: "<education><organization><name>MIT</name><name>Repeated</name></organization></education>"},
		{Name: "r/educations/e3.xml", Body: "<education><role-title>PhD</role-title></education>"},
		{Name: "r/works/ignored.xml", Body: "<work/>"},
	})

	output := filepath.Join(testsupport.BaseDir(cfg), "field_counts.csv")
	summary, err := census.Run(context.Background(), cfg, nil, output, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Documents != 3 {
		t.Fatalf("expected 3 documents, got %d", summary.Documents)
	}
	if summary.ParseErrors != 0 {
		t.Fatalf("expected no parse errors, got %d", summary.ParseErrors)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"Field,Count",
		"education,3",
		"education.organization,2",
		"education.organization.name,2",
		"education.role-title,1",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Fatalf("line %d: expected %q, got %q", i, line, lines[i])
		}
	}
}

func TestRunSkipsMalformedDocuments(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	testsupport.BuildArchive(t, filepath.Join(cfg.Paths.ArchiveDir, "dump.tar.gz"), []testsupport.ArchiveFile{
		{Name: "r/educations/bad.xml", Body: "<education><broken></education>"},
		{Name: "r/educations/good.xml", Body: "<education/>"},
	})

	output := filepath.Join(testsupport.BaseDir(cfg), "field_counts.csv")
	summary, err := census.Run(context.Background(), cfg, nil, output, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Documents != 1 || summary.ParseErrors != 1 {
		t.Fatalf("expected 1 document and 1 parse error, got %+v", summary)
	}
	if summary.Fields != 1 {
		t.Fatalf("expected 1 field, got %d", summary.Fields)
	}
}

func TestRunAbortsOnUnreadableArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	corrupt := filepath.Join(cfg.Paths.ArchiveDir, "broken.tar.gz")
	if err := os.WriteFile(corrupt, []byte("junk"), 0o644); err != nil {
		t.Fatalf("write corrupt archive: %v", err)
	}

	output := filepath.Join(testsupport.BaseDir(cfg), "field_counts.csv")
	if _, err := census.Run(context.Background(), cfg, nil, output, nil); err == nil {
		t.Fatal("expected error for unreadable archive")
	}
	if _, err := os.Stat(output); err == nil {
		t.Fatal("expected no output written after abort")
	}
}
