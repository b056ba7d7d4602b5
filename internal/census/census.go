package census

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"

	"orchard/internal/archive"
	"orchard/internal/config"
	"orchard/internal/dataset"
	"orchard/internal/logging"
	"orchard/internal/pipeline"
	"orchard/internal/xmlflat"
)

// Summary reports what a census pass covered.
type Summary struct {
	Archives    int
	Documents   int64
	ParseErrors int64
	Fields      int
}

// Run counts, across every education document in the given archives, how many
// documents carry each element path. Paths are counted once per document
// regardless of repetition. The result is written to outputPath as a
// Field,Count CSV sorted by count descending, ties lexicographic.
func Run(ctx context.Context, cfg *config.Config, paths []string, outputPath string, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "census")

	if len(paths) == 0 {
		var err error
		paths, err = archive.Discover(cfg.Paths.ArchiveDir)
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrArchiveRead, "census", "discover archives", cfg.Paths.ArchiveDir, err)
		}
	}

	counts := make(map[string]int64)
	summary := &Summary{Archives: len(paths)}
	for _, path := range paths {
		if err := countArchive(ctx, path, counts, summary, logger); err != nil {
			return nil, err
		}
	}

	fields := make([]string, 0, len(counts))
	for field := range counts {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool {
		if counts[fields[i]] != counts[fields[j]] {
			return counts[fields[i]] > counts[fields[j]]
		}
		return fields[i] < fields[j]
	})

	writer, err := dataset.NewWriter(outputPath, []string{"Field", "Count"})
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "census", "create output", outputPath, err)
	}
	for _, field := range fields {
		if err := writer.Write([]string{field, strconv.FormatInt(counts[field], 10)}); err != nil {
			writer.Discard()
			return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "census", "write output", outputPath, err)
		}
	}
	if err := writer.Commit(); err != nil {
		return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "census", "commit output", outputPath, err)
	}

	summary.Fields = len(fields)
	logger.Info("census complete",
		logging.Int("archives", summary.Archives),
		logging.Int64("documents", summary.Documents),
		logging.Int64("parse_errors", summary.ParseErrors),
		logging.Int("fields", summary.Fields))
	return summary, nil
}

func countArchive(ctx context.Context, path string, counts map[string]int64, summary *Summary, logger *slog.Logger) error {
	name := filepath.Base(path)
	reader, err := archive.Open(path)
	if err != nil {
		return pipeline.Wrap(pipeline.ErrArchiveRead, "census", "open archive", name, err)
	}
	defer reader.Close()

	var filter archive.Filter
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return pipeline.Wrap(pipeline.ErrArchiveRead, "census", "read entry", name, err)
		}
		if !filter.Match(entry) {
			continue
		}
		elementPaths, err := xmlflat.Paths(reader)
		if err != nil {
			summary.ParseErrors++
			logger.Warn("skipping malformed document",
				logging.String(logging.FieldEntry, entry.Path),
				logging.Error(err))
			continue
		}
		for _, elementPath := range elementPaths {
			counts[elementPath]++
		}
		summary.Documents++
	}
}
