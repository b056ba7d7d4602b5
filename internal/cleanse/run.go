package cleanse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"orchard/internal/config"
	"orchard/internal/dataset"
	"orchard/internal/logging"
	"orchard/internal/pipeline"
)

// requiredColumns are the segment columns a file must carry to be cleaned,
// in the order the output columns are derived from them.
var requiredColumns = []string{
	"education.source.source-orcid.path",
	"education.source.source-name",
	"education.organization.name",
	"education.role-title",
	"education.start-date.year",
	"education.end-date.year",
	"education.organization.address.city",
	"education.organization.address.region",
	"education.organization.address.country",
}

var outputColumns = []string{"id", "name", "university", "degree", "start_year", "end_year", "city", "region", "country"}

// Summary aggregates a cleaning pass over the segments directory.
type Summary struct {
	FilesProcessed      int
	FilesSkipped        int
	InputRows           int64
	MissingFieldDrops   int64
	UnclassifiableDrops int64
	OutputRows          int64
}

// Run reads every segment CSV, drops rows with empty required cells or
// unclassifiable role titles, normalizes university names, and writes the
// combined cleaned table to outputPath. Files missing required columns are
// skipped and counted, never fatal.
func Run(ctx context.Context, cfg *config.Config, outputPath string, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "clean")

	inputs, err := listSegmentFiles(cfg.SegmentsDir())
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	if len(inputs) == 0 {
		logger.Warn("no segment files found", logging.String("dir", cfg.SegmentsDir()))
	}

	writer, err := dataset.NewWriter(outputPath, outputColumns)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "clean", "create output", outputPath, err)
	}

	summary := &Summary{}
	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			writer.Discard()
			return nil, err
		}
		if err := cleanFile(path, writer, summary, logger); err != nil {
			writer.Discard()
			return nil, err
		}
	}
	if err := writer.Commit(); err != nil {
		return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "clean", "commit output", outputPath, err)
	}
	summary.OutputRows = int64(writer.Rows())

	logger.Info("clean complete",
		logging.Int("files_processed", summary.FilesProcessed),
		logging.Int("files_skipped", summary.FilesSkipped),
		logging.Int64("input_rows", summary.InputRows),
		logging.Int64("missing_field_drops", summary.MissingFieldDrops),
		logging.Int64("unclassifiable_drops", summary.UnclassifiableDrops),
		logging.Int64("output_rows", summary.OutputRows))
	return summary, nil
}

func cleanFile(path string, writer *dataset.Writer, summary *Summary, logger *slog.Logger) error {
	reader, err := dataset.OpenReader(path)
	if err != nil {
		summary.FilesSkipped++
		logger.Warn("skipping unreadable segment",
			logging.String(logging.FieldSegment, path),
			logging.Error(err))
		return nil
	}
	defer reader.Close()

	indices, err := reader.Header().Require(requiredColumns...)
	if err != nil {
		summary.FilesSkipped++
		logger.Warn("skipping segment with missing columns",
			logging.String(logging.FieldSegment, path),
			logging.Error(err))
		return nil
	}

	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		summary.InputRows++
		if rowHasEmptyRequired(row, indices) {
			summary.MissingFieldDrops++
			continue
		}
		degree := ClassifyDegree(row[indices[3]])
		if degree == "" {
			summary.UnclassifiableDrops++
			continue
		}
		out := []string{
			row[indices[0]],
			row[indices[1]],
			CleanName(row[indices[2]]),
			degree,
			row[indices[4]],
			row[indices[5]],
			row[indices[6]],
			row[indices[7]],
			row[indices[8]],
		}
		if err := writer.Write(out); err != nil {
			return pipeline.Wrap(pipeline.ErrOutputWrite, "clean", "write row", path, err)
		}
	}
	summary.FilesProcessed++
	return nil
}

func rowHasEmptyRequired(row []string, indices []int) bool {
	for _, idx := range indices {
		if row[idx] == "" {
			return true
		}
	}
	return false
}

func listSegmentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
