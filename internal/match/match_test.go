package match

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"orchard/internal/pipeline"
)

func TestCountColumnTalliesAndSkipsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	body := "id,university\n" +
		"1,Oxford\n" +
		"2,Oxford\n" +
		"3,\n" +
		"4,Cambridge\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	freq, err := CountColumn(path, "university")
	if err != nil {
		t.Fatalf("CountColumn: %v", err)
	}
	want := Frequency{"Oxford": 2, "Cambridge": 1}
	if !reflect.DeepEqual(freq, want) {
		t.Fatalf("frequency mismatch: got %v want %v", freq, want)
	}
}

func TestCountColumnMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	if err := os.WriteFile(path, []byte("id,name\n1,x\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := CountColumn(path, "university")
	if !errors.Is(err, pipeline.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestRankNamesTieBreaksLexicographically(t *testing.T) {
	freq := Frequency{"b": 1, "a": 1, "c": 2}
	got := RankNames(freq)
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rank mismatch: got %v want %v", got, want)
	}
}

func TestBuildMappingFuzzyClaim(t *testing.T) {
	freq := Frequency{
		"University of Oxford": 10,
		"Univrsity of Oxford":  2,
	}
	mapping, substitutions := BuildMapping(freq, 1, 90, nil)
	if mapping["Univrsity of Oxford"] != "University of Oxford" {
		t.Fatalf("typo not claimed: %v", mapping)
	}
	if substitutions != 1 {
		t.Fatalf("expected 1 substitution, got %d", substitutions)
	}
}

func TestBuildMappingSubstringClaim(t *testing.T) {
	freq := Frequency{
		"Oxford":                       10,
		"Department of Physics Oxford": 1,
	}
	mapping, _ := BuildMapping(freq, 1, 90, nil)
	if mapping["Department of Physics Oxford"] != "Oxford" {
		t.Fatalf("substring variant not claimed: %v", mapping)
	}
}

func TestBuildMappingFirstClaimWins(t *testing.T) {
	// Both anchors contain "College" as a substring of the variant, but the
	// higher-ranked anchor sweeps first.
	freq := Frequency{
		"Trinity College":        10,
		"Kings College":          5,
		"Trinity College Dublin": 1,
	}
	mapping, _ := BuildMapping(freq, 2, 99, nil)
	if mapping["Trinity College Dublin"] != "Trinity College" {
		t.Fatalf("expected higher-ranked anchor to claim first: %v", mapping)
	}
	if mapping["Kings College"] != "Kings College" {
		t.Fatalf("unrelated anchor should be untouched: %v", mapping)
	}
}

func TestBuildMappingClaimedAnchorIsInert(t *testing.T) {
	// The second anchor is fuzzily claimed by the first, so it must not run
	// a claiming pass of its own: the long variant it would have claimed by
	// substring stays unmapped.
	freq := Frequency{
		"University of Oxford":                     100,
		"Universith of Oxford":                     50,
		"The Universith of Oxford Graduate School": 1,
	}
	mapping, _ := BuildMapping(freq, 2, 90, nil)
	if mapping["Universith of Oxford"] != "University of Oxford" {
		t.Fatalf("expected second anchor to be claimed: %v", mapping)
	}
	if got := mapping["The Universith of Oxford Graduate School"]; got != "The Universith of Oxford Graduate School" {
		t.Fatalf("inert anchor must not claim, got mapping to %q", got)
	}
}

func TestBuildMappingPinnedAnchorCannotBeClaimed(t *testing.T) {
	// The top anchor claims a variant and becomes pinned. The lower-ranked
	// "Oxford" anchor would otherwise absorb it via the substring rule and
	// break idempotence.
	freq := Frequency{
		"University of Oxford":  100,
		"Oxford":                50,
		"University of Oxfords": 5,
	}
	mapping, _ := BuildMapping(freq, 2, 90, nil)
	if mapping["University of Oxfords"] != "University of Oxford" {
		t.Fatalf("variant not claimed: %v", mapping)
	}
	if mapping["University of Oxford"] != "University of Oxford" {
		t.Fatalf("pinned anchor must stay canonical: %v", mapping)
	}
	assertIdempotent(t, mapping)
}

func TestBuildMappingIdempotent(t *testing.T) {
	freq := Frequency{
		"University of Oxford":            120,
		"Oxford":                          80,
		"Univrsity of Oxford":             12,
		"University of Oxford Somerville": 7,
		"Cambridge University":            60,
		"Cambridge Universty":             3,
		"MIT":                             40,
	}
	mapping, _ := BuildMapping(freq, 4, 90, nil)
	assertIdempotent(t, mapping)
}

func TestBuildMappingTopNLargerThanNames(t *testing.T) {
	freq := Frequency{"A": 2, "B": 1}
	mapping, substitutions := BuildMapping(freq, 500, 90, nil)
	if len(mapping) != 2 || substitutions != 0 {
		t.Fatalf("unexpected result: %v / %d", mapping, substitutions)
	}
}

func assertIdempotent(t *testing.T, mapping map[string]string) {
	t.Helper()
	for name, target := range mapping {
		if mapping[target] != target {
			t.Fatalf("mapping not idempotent: %q -> %q -> %q", name, target, mapping[target])
		}
	}
}

func TestApplyRewritesColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cleaned.csv")
	output := filepath.Join(dir, "matched.csv")
	body := "id,university,degree\n" +
		"1,Univrsity of Oxford,phd\n" +
		"2,University of Oxford,masters\n" +
		"3,Unknown Place,bachelors\n"
	if err := os.WriteFile(input, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	mapping := map[string]string{
		"Univrsity of Oxford":  "University of Oxford",
		"University of Oxford": "University of Oxford",
	}
	result, err := Apply(input, output, "university", mapping)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", result.Rows)
	}
	if result.Substituted != 1 {
		t.Fatalf("expected 1 substitution, got %d", result.Substituted)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "id,university,degree\n" +
		"1,University of Oxford,phd\n" +
		"2,University of Oxford,masters\n" +
		"3,Unknown Place,bachelors\n"
	if string(data) != want {
		t.Fatalf("output mismatch:\ngot  %q\nwant %q", data, want)
	}
}

func TestApplyMissingColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cleaned.csv")
	if err := os.WriteFile(input, []byte("id,name\n1,x\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := Apply(input, filepath.Join(dir, "out.csv"), "university", nil)
	if !errors.Is(err, pipeline.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.csv")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("no output should exist, stat err: %v", statErr)
	}
}
