package match

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"

	"orchard/internal/dataset"
	"orchard/internal/logging"
	"orchard/internal/textutil"
)

// Frequency counts how often each distinct value appears in a column.
type Frequency map[string]int

// CountColumn streams the CSV at path once and tallies the named column.
// Empty cells are ignored. A header without the column fails with
// ErrMissingField before any counting happens.
func CountColumn(path, column string) (Frequency, error) {
	reader, err := dataset.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	indices, err := reader.Header().Require(column)
	if err != nil {
		return nil, err
	}
	idx := indices[0]

	freq := make(Frequency)
	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		value := row[idx]
		if value == "" {
			continue
		}
		freq[value]++
	}
	return freq, nil
}

// RankNames orders names by descending count, breaking ties lexicographically
// so the ranking is independent of map iteration order.
func RankNames(freq Frequency) []string {
	names := make([]string, 0, len(freq))
	for name := range freq {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if freq[names[i]] != freq[names[j]] {
			return freq[names[i]] > freq[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// BuildMapping clusters names under their most frequent spellings. The topN
// ranked names become anchors, processed in rank order; an anchor claims
// every still-unclaimed name whose token sort ratio reaches threshold, or
// that contains the anchor as a case-insensitive substring.
//
// Two rules keep the result idempotent: an anchor that has been claimed
// runs no pass of its own, and an anchor that has claimed names can never
// be claimed afterward. Every value in the returned mapping therefore maps
// to itself.
func BuildMapping(freq Frequency, topN int, threshold float64, logger *slog.Logger) (map[string]string, int) {
	if logger == nil {
		logger = logging.NewNop()
	}

	names := RankNames(freq)

	mapping := make(map[string]string, len(names))
	for _, name := range names {
		mapping[name] = name
	}

	normalized := make(map[string]string, len(names))
	lowered := make(map[string]string, len(names))
	for _, name := range names {
		normalized[name] = textutil.NormalizeTokens(name)
		lowered[name] = strings.ToLower(name)
	}

	anchorCount := topN
	if anchorCount > len(names) {
		anchorCount = len(names)
	}

	pinned := make(map[string]bool)
	substitutions := 0

	for _, anchor := range names[:anchorCount] {
		if mapping[anchor] != anchor {
			continue
		}
		anchorNorm := normalized[anchor]
		anchorLower := lowered[anchor]

		for _, name := range names {
			if name == anchor {
				continue
			}
			if mapping[name] != name || pinned[name] {
				continue
			}

			claimed := false
			if anchorNorm != "" && normalized[name] != "" &&
				textutil.IndelRatioCeiling(anchorNorm, normalized[name]) >= threshold {
				if ratio := textutil.IndelRatio(anchorNorm, normalized[name]); ratio >= threshold {
					claimed = true
					logger.Debug("fuzzy mapping",
						logging.String("from", name),
						logging.String("to", anchor),
						logging.Float64("similarity", ratio),
					)
				}
			}
			if !claimed && strings.Contains(lowered[name], anchorLower) {
				claimed = true
				logger.Debug("substring mapping",
					logging.String("from", name),
					logging.String("to", anchor),
				)
			}
			if claimed {
				mapping[name] = anchor
				pinned[anchor] = true
				substitutions++
			}
		}
	}

	return mapping, substitutions
}

// ApplyResult summarizes a mapping rewrite.
type ApplyResult struct {
	Rows        int
	Substituted int
}

// Apply rewrites the named column of the CSV at inputPath through the
// mapping, streaming rows to outputPath. Names absent from the mapping pass
// through unchanged. The output appears atomically.
func Apply(inputPath, outputPath, column string, mapping map[string]string) (ApplyResult, error) {
	reader, err := dataset.OpenReader(inputPath)
	if err != nil {
		return ApplyResult{}, err
	}
	defer reader.Close()

	indices, err := reader.Header().Require(column)
	if err != nil {
		return ApplyResult{}, err
	}
	idx := indices[0]

	writer, err := dataset.NewWriter(outputPath, reader.Columns())
	if err != nil {
		return ApplyResult{}, err
	}

	var result ApplyResult
	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writer.Discard()
			return ApplyResult{}, err
		}
		if canonical, ok := mapping[row[idx]]; ok && canonical != row[idx] {
			row[idx] = canonical
			result.Substituted++
		}
		if err := writer.Write(row); err != nil {
			writer.Discard()
			return ApplyResult{}, err
		}
		result.Rows++
	}

	if err := writer.Commit(); err != nil {
		return ApplyResult{}, err
	}
	return result, nil
}
