package links_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orchard/internal/links"
	"orchard/internal/pipeline"
)

const matchedHeader = "id,name,university,degree,start_year,end_year,city,region,country"

func writeMatched(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matched.csv")
	body := matchedHeader + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRunBuildsTransitions(t *testing.T) {
	input := writeMatched(t,
		"0001,Ada,Uni X,bachelors,1998,2002,CityX,RX,GB",
		"0001,Ada,Uni Y,masters,2002,2004,CityY,RY,GB",
		"0001,Ada,Uni Z,phd,2004,2009,CityZ,RZ,GB",
		"0002,Grace,Uni X,bachelors,2000,2004,CityX,RX,US",
		"0002,Grace,Uni Z,phd,2005,2010,CityZ,RZ,US",
		"0003,Alan,Uni X,bachelors,1999,2002,CityX,RX,GB",
		"0003,Alan,Uni Y,bachelors,2002,2003,CityY,RY,GB",
	)
	output := filepath.Join(t.TempDir(), "links.csv")

	summary, err := links.Run(context.Background(), input, output, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Persons != 3 {
		t.Fatalf("expected 3 persons, got %d", summary.Persons)
	}
	if summary.Ambiguous != 1 {
		t.Fatalf("expected 1 ambiguous person, got %d", summary.Ambiguous)
	}
	if summary.Edges != 3 {
		t.Fatalf("expected 3 edges, got %d", summary.Edges)
	}

	lines := readLines(t, output)
	if lines[0] != "name,source_degree,source_university,source_start_year,source_end_year,source_city,source_region,source_country,destination_degree,destination_university,destination_start_year,destination_end_year,destination_city,destination_region,destination_country" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	want := []string{
		"Ada,bachelors,Uni X,1998,2002,CityX,RX,GB,masters,Uni Y,2002,2004,CityY,RY,GB",
		"Ada,masters,Uni Y,2002,2004,CityY,RY,GB,phd,Uni Z,2004,2009,CityZ,RZ,GB",
		"Grace,bachelors,Uni X,2000,2004,CityX,RX,US,phd,Uni Z,2005,2010,CityZ,RZ,US",
	}
	if len(lines)-1 != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(lines)-1)
	}
	for i, line := range lines[1:] {
		if line != want[i] {
			t.Fatalf("edge %d: got %q, want %q", i, line, want[i])
		}
	}
}

func TestRunSkipsBachelorsPhDWhenMastersPresent(t *testing.T) {
	// The masters stay overlaps the phd stay, so only bachelors to masters
	// survives; the ladder never falls back to a direct bachelors to phd edge.
	input := writeMatched(t,
		"0001,Ada,Uni X,bachelors,1998,2002,CityX,RX,GB",
		"0001,Ada,Uni Y,masters,2002,2006,CityY,RY,GB",
		"0001,Ada,Uni Z,phd,2004,2009,CityZ,RZ,GB",
	)
	output := filepath.Join(t.TempDir(), "links.csv")

	summary, err := links.Run(context.Background(), input, output, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Edges != 1 {
		t.Fatalf("expected 1 edge, got %d", summary.Edges)
	}
	lines := readLines(t, output)
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "Ada,bachelors,Uni X") {
		t.Fatalf("unexpected output: %q", lines)
	}
}

func TestRunRejectsImplausibleAndUnparsableYears(t *testing.T) {
	input := writeMatched(t,
		"0001,Ada,Uni X,bachelors,2000,2005,CityX,RX,GB",
		"0001,Ada,Uni Y,masters,2003,2007,CityY,RY,GB",
		"0002,Grace,Uni X,bachelors,2000,n/a,CityX,RX,US",
		"0002,Grace,Uni Y,masters,2005,2007,CityY,RY,US",
	)
	output := filepath.Join(t.TempDir(), "links.csv")

	summary, err := links.Run(context.Background(), input, output, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Persons != 2 || summary.Ambiguous != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Edges != 0 {
		t.Fatalf("expected no edges, got %d", summary.Edges)
	}
	lines := readLines(t, output)
	if len(lines) != 1 {
		t.Fatalf("expected header-only output, got %d lines", len(lines))
	}
}

func TestRunMissingColumnFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matched.csv")
	if err := os.WriteFile(path, []byte("id,name,university\n0001,Ada,Uni X\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	output := filepath.Join(t.TempDir(), "links.csv")

	_, err := links.Run(context.Background(), path, output, nil)
	if !errors.Is(err, pipeline.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, statErr := os.Stat(output); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output file, got stat err %v", statErr)
	}
}
