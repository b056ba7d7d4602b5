package archive_test

import (
	"testing"

	"orchard/internal/archive"
)

func TestFilterMatch(t *testing.T) {
	cases := []struct {
		name  string
		entry archive.Entry
		want  bool
	}{
		{"education xml", archive.Entry{Path: "0000-0001/educations/record.xml", Regular: true}, true},
		{"uppercase path", archive.Entry{Path: "0000-0001/EDUCATIONS/RECORD.XML", Regular: true}, true},
		{"directory entry", archive.Entry{Path: "0000-0001/educations/", Regular: false}, false},
		{"wrong parent", archive.Entry{Path: "0000-0001/works/record.xml", Regular: true}, false},
		{"nested wrong parent", archive.Entry{Path: "educations/extra/record.xml", Regular: true}, false},
		{"wrong extension", archive.Entry{Path: "0000-0001/educations/record.json", Regular: true}, false},
		{"no parent", archive.Entry{Path: "record.xml", Regular: true}, false},
		{"deeply nested", archive.Entry{Path: "a/b/c/educations/r.xml", Regular: true}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var filter archive.Filter
			if got := filter.Match(tc.entry); got != tc.want {
				t.Fatalf("Match(%q) = %v, want %v", tc.entry.Path, got, tc.want)
			}
		})
	}
}

func TestFilterCounters(t *testing.T) {
	var filter archive.Filter
	entries := []archive.Entry{
		{Path: "p/educations/a.xml", Regular: true},
		{Path: "p/educations/", Regular: false},
		{Path: "p/works/b.xml", Regular: true},
		{Path: "p/educations/c.xml", Regular: true},
	}
	for _, entry := range entries {
		filter.Match(entry)
	}
	if filter.Seen != 4 {
		t.Fatalf("expected 4 seen, got %d", filter.Seen)
	}
	if filter.Matched != 2 {
		t.Fatalf("expected 2 matched, got %d", filter.Matched)
	}
}
