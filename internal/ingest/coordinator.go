package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"orchard/internal/archive"
	"orchard/internal/catalog"
	"orchard/internal/config"
	"orchard/internal/logging"
	"orchard/internal/pipeline"
	"orchard/internal/segment"
	"orchard/internal/xmlflat"
)

// Coordinator drives ingest runs: it discovers archives, fans them out to a
// bounded worker pool, and records progress in the catalog. Each archive is
// processed start to finish by exactly one worker.
type Coordinator struct {
	cfg        *config.Config
	store      *catalog.Store
	logger     *slog.Logger
	onProgress func(Progress)
}

// NewCoordinator constructs a coordinator with initialized dependencies.
func NewCoordinator(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*Coordinator, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("ingest coordinator requires config and catalog store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "ingest"),
	}, nil
}

// OnProgress registers a callback fed with per-archive counters roughly every
// progress_interval matched entries. The callback may be invoked concurrently
// from multiple workers.
func (c *Coordinator) OnProgress(fn func(Progress)) {
	c.onProgress = fn
}

// Run ingests the given archives, or every supported archive in the
// configured archive directory when paths is empty. One run holds the data
// directory lock for its duration; concurrent runs against the same data
// directory are refused.
func (c *Coordinator) Run(ctx context.Context, paths []string) (*Report, error) {
	lock := flock.New(c.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another orchard ingest is already running against this data directory")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if len(paths) == 0 {
		paths, err = archive.Discover(c.cfg.Paths.ArchiveDir)
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrArchiveRead, "ingest", "discover archives", c.cfg.Paths.ArchiveDir, err)
		}
	}

	run, err := c.store.BeginRun(ctx, c.cfg.Paths.ArchiveDir, c.cfg.Ingest.Workers)
	if err != nil {
		return nil, err
	}
	ctx = pipeline.WithRunID(ctx, run.ID)
	ctx = pipeline.WithStage(ctx, "ingest")
	logger := logging.WithContext(ctx, c.logger)

	report := &Report{RunID: run.ID, Archives: make([]ArchiveResult, len(paths))}
	if len(paths) == 0 {
		logger.Warn("no archives found", logging.String("dir", c.cfg.Paths.ArchiveDir))
		if err := c.store.FinishRun(ctx, run.ID); err != nil {
			return report, err
		}
		return report, nil
	}

	start := time.Now()
	logger.Info("ingest run starting",
		logging.Int("archives", len(paths)),
		logging.Int("workers", c.cfg.Ingest.Workers))

	rows := make([]*catalog.Archive, len(paths))
	for i, path := range paths {
		row, err := c.store.AddArchive(ctx, run.ID, path)
		if err != nil {
			return report, err
		}
		rows[i] = row
		report.Archives[i] = ArchiveResult{Path: path, Status: catalog.StatusPending}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Ingest.Workers)
	for i := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			result, err := c.processArchive(gctx, rows[i])
			report.Archives[i] = result
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	if err := c.store.FinishRun(persistCtx(ctx), run.ID); err != nil {
		return report, err
	}
	logger.Info("ingest run finished",
		logging.Int("completed", report.Completed()),
		logging.Int("failed", report.Failed()),
		logging.Int("canceled", report.Canceled()),
		logging.Int64("records", report.Records()),
		logging.Int("segments", report.SegmentCount()),
		logging.Duration("elapsed", time.Since(start)))
	return report, nil
}

// processArchive runs one archive end to end. Archive-level failures are
// recorded in the result and the catalog, never returned: a bad archive must
// not stop its siblings. The returned error reports catalog persistence
// failures only.
func (c *Coordinator) processArchive(ctx context.Context, row *catalog.Archive) (ArchiveResult, error) {
	name := filepath.Base(row.Path)
	ctx = pipeline.WithArchive(ctx, name)
	logger := logging.WithContext(ctx, c.logger)

	row.MarkRunning()
	if err := c.store.UpdateArchive(persistCtx(ctx), row); err != nil {
		return resultFromRow(row, nil, err), err
	}
	logger.Info("archive starting")

	writer := segment.NewWriter(c.cfg.SegmentsDir(), c.cfg.Ingest.OutputPrefix, name, c.cfg.Ingest.BatchSize)
	var filter archive.Filter

	reader, err := archive.Open(row.Path)
	if err != nil {
		cause := pipeline.Wrap(pipeline.ErrArchiveRead, "ingest", "open archive", name, err)
		return c.failArchive(ctx, logger, row, filter, writer, cause)
	}
	defer reader.Close()

	for {
		if ctx.Err() != nil {
			return c.cancelArchive(logger, row, filter, writer)
		}
		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			cause := pipeline.Wrap(pipeline.ErrArchiveRead, "ingest", "read entry", name, err)
			return c.failArchive(ctx, logger, row, filter, writer, cause)
		}
		if !filter.Match(entry) {
			continue
		}
		record, err := xmlflat.Flatten(reader)
		if err != nil {
			row.ParseErrors++
			logger.Warn("skipping malformed document",
				logging.String(logging.FieldEntry, entry.Path),
				logging.Error(pipeline.Wrap(pipeline.ErrParse, "ingest", "flatten document", entry.Path, err)))
			continue
		}
		if err := writer.Append(record); err != nil {
			cause := pipeline.Wrap(pipeline.ErrOutputWrite, "ingest", "write segment", name, err)
			return c.failArchive(ctx, logger, row, filter, writer, cause)
		}
		if c.cfg.Ingest.ProgressInterval > 0 && filter.Matched%c.cfg.Ingest.ProgressInterval == 0 {
			c.reportProgress(ctx, logger, row, filter, writer)
		}
	}

	if err := writer.Flush(); err != nil {
		cause := pipeline.Wrap(pipeline.ErrOutputWrite, "ingest", "flush segment", name, err)
		return c.failArchive(ctx, logger, row, filter, writer, cause)
	}

	syncCounters(row, filter, writer)
	row.MarkCompleted()
	persistErr := c.store.UpdateArchive(persistCtx(ctx), row)
	result := resultFromRow(row, writer.Segments(), nil)
	logger.Info("archive completed",
		logging.Int64("entries_seen", row.EntriesSeen),
		logging.Int64("entries_matched", row.EntriesMatched),
		logging.Int64("parse_errors", row.ParseErrors),
		logging.Int64("records", row.Records),
		logging.Int64("segments", row.Segments),
		logging.Duration("elapsed", result.Elapsed))
	return result, persistErr
}

func (c *Coordinator) failArchive(ctx context.Context, logger *slog.Logger, row *catalog.Archive, filter archive.Filter, writer *segment.Writer, cause error) (ArchiveResult, error) {
	syncCounters(row, filter, writer)
	row.MarkFailed(cause.Error())
	persistErr := c.store.UpdateArchive(persistCtx(ctx), row)
	logger.Error("archive failed", logging.Error(cause))
	return resultFromRow(row, writer.Segments(), cause), persistErr
}

func (c *Coordinator) cancelArchive(logger *slog.Logger, row *catalog.Archive, filter archive.Filter, writer *segment.Writer) (ArchiveResult, error) {
	syncCounters(row, filter, writer)
	row.MarkCanceled()
	persistErr := c.store.UpdateArchive(context.Background(), row)
	logger.Info("archive canceled",
		logging.Int64("entries_matched", row.EntriesMatched),
		logging.Int64("records", row.Records),
		logging.Int64("segments", row.Segments))
	return resultFromRow(row, writer.Segments(), nil), persistErr
}

func (c *Coordinator) reportProgress(ctx context.Context, logger *slog.Logger, row *catalog.Archive, filter archive.Filter, writer *segment.Writer) {
	syncCounters(row, filter, writer)
	if err := c.store.UpdateArchive(ctx, row); err != nil {
		logger.Warn("catalog progress update failed", logging.Error(err))
	}
	logger.Debug("ingest progress",
		logging.Int64("entries_seen", row.EntriesSeen),
		logging.Int64("entries_matched", row.EntriesMatched),
		logging.Int64("parse_errors", row.ParseErrors),
		logging.Int64("records", row.Records))
	if c.onProgress != nil {
		c.onProgress(Progress{
			Archive:        row.Path,
			EntriesSeen:    row.EntriesSeen,
			EntriesMatched: row.EntriesMatched,
			ParseErrors:    row.ParseErrors,
			Records:        row.Records,
		})
	}
}

func syncCounters(row *catalog.Archive, filter archive.Filter, writer *segment.Writer) {
	row.EntriesSeen = int64(filter.Seen)
	row.EntriesMatched = int64(filter.Matched)
	row.Records = int64(writer.Records())
	row.Segments = int64(len(writer.Segments()))
}

func resultFromRow(row *catalog.Archive, segments []string, cause error) ArchiveResult {
	return ArchiveResult{
		Path:           row.Path,
		Status:         row.Status,
		EntriesSeen:    row.EntriesSeen,
		EntriesMatched: row.EntriesMatched,
		ParseErrors:    row.ParseErrors,
		Records:        row.Records,
		Segments:       append([]string(nil), segments...),
		Elapsed:        time.Duration(row.ElapsedSeconds * float64(time.Second)),
		Err:            cause,
	}
}

// persistCtx keeps catalog bookkeeping writable after cancellation: terminal
// statuses must land even when the worker's context is already dead.
func persistCtx(ctx context.Context) context.Context {
	if ctx.Err() == nil {
		return ctx
	}
	return context.Background()
}
