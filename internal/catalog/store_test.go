package catalog_test

import (
	"context"
	"fmt"
	"testing"

	"orchard/internal/catalog"
	"orchard/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, cfg.Paths.ArchiveDir, 4)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched == nil || fetched.ArchiveDir != cfg.Paths.ArchiveDir {
		t.Fatalf("unexpected fetched run: %#v", fetched)
	}
	if fetched.FinishedAt != nil {
		t.Fatalf("new run should not be finished, got %v", fetched.FinishedAt)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, cfg.Paths.ArchiveDir, 1)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenCatalog(t, cfg)
	fetched, err := reopened.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun after reopen failed: %v", err)
	}
	if fetched == nil || fetched.ID != run.ID {
		t.Fatalf("expected run to survive reopen, got %#v", fetched)
	}
}

func TestArchiveLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, cfg.Paths.ArchiveDir, 2)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	archive, err := store.AddArchive(ctx, run.ID, "dump_2024.tar.gz")
	if err != nil {
		t.Fatalf("AddArchive failed: %v", err)
	}
	if archive.Status != catalog.StatusPending {
		t.Fatalf("expected pending status, got %s", archive.Status)
	}

	archive.MarkRunning()
	if err := store.UpdateArchive(ctx, archive); err != nil {
		t.Fatalf("UpdateArchive running failed: %v", err)
	}

	archive.EntriesSeen = 120
	archive.EntriesMatched = 40
	archive.ParseErrors = 2
	archive.Records = 38
	archive.Segments = 1
	archive.MarkCompleted()
	if err := store.UpdateArchive(ctx, archive); err != nil {
		t.Fatalf("UpdateArchive completed failed: %v", err)
	}

	fetched, err := store.GetArchive(ctx, archive.ID)
	if err != nil {
		t.Fatalf("GetArchive failed: %v", err)
	}
	if fetched.Status != catalog.StatusCompleted {
		t.Fatalf("expected completed status, got %s", fetched.Status)
	}
	if fetched.EntriesSeen != 120 || fetched.EntriesMatched != 40 || fetched.ParseErrors != 2 {
		t.Fatalf("counters not persisted: %#v", fetched)
	}
	if fetched.Records != 38 || fetched.Segments != 1 {
		t.Fatalf("output counters not persisted: %#v", fetched)
	}
	if fetched.StartedAt == nil || fetched.FinishedAt == nil {
		t.Fatalf("expected timestamps set, got start=%v finish=%v", fetched.StartedAt, fetched.FinishedAt)
	}
}

func TestMarkFailedPersistsMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, cfg.Paths.ArchiveDir, 1)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	archive, err := store.AddArchive(ctx, run.ID, "broken.tar.gz")
	if err != nil {
		t.Fatalf("AddArchive failed: %v", err)
	}

	archive.MarkRunning()
	archive.MarkFailed("gzip: invalid header")
	if err := store.UpdateArchive(ctx, archive); err != nil {
		t.Fatalf("UpdateArchive failed: %v", err)
	}

	fetched, err := store.GetArchive(ctx, archive.ID)
	if err != nil {
		t.Fatalf("GetArchive failed: %v", err)
	}
	if fetched.Status != catalog.StatusFailed {
		t.Fatalf("expected failed status, got %s", fetched.Status)
	}
	if fetched.ErrorMessage != "gzip: invalid header" {
		t.Fatalf("unexpected error message %q", fetched.ErrorMessage)
	}
}

func TestCanceledArchiveKeepsCounters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, cfg.Paths.ArchiveDir, 1)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	archive, err := store.AddArchive(ctx, run.ID, "partial.tar.gz")
	if err != nil {
		t.Fatalf("AddArchive failed: %v", err)
	}

	archive.MarkRunning()
	archive.EntriesSeen = 50
	archive.EntriesMatched = 10
	archive.Records = 8
	archive.MarkCanceled()
	if err := store.UpdateArchive(ctx, archive); err != nil {
		t.Fatalf("UpdateArchive failed: %v", err)
	}

	fetched, err := store.GetArchive(ctx, archive.ID)
	if err != nil {
		t.Fatalf("GetArchive failed: %v", err)
	}
	if fetched.Status != catalog.StatusCanceled {
		t.Fatalf("expected canceled status, got %s", fetched.Status)
	}
	if fetched.EntriesSeen != 50 || fetched.Records != 8 {
		t.Fatalf("expected counters preserved, got %#v", fetched)
	}
}

func TestArchivesByRunOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, cfg.Paths.ArchiveDir, 1)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	names := []string{"a.tar.gz", "b.tar.gz", "c.tar.gz"}
	for _, name := range names {
		if _, err := store.AddArchive(ctx, run.ID, name); err != nil {
			t.Fatalf("AddArchive %s failed: %v", name, err)
		}
	}

	archives, err := store.ArchivesByRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("ArchivesByRun failed: %v", err)
	}
	if len(archives) != len(names) {
		t.Fatalf("expected %d archives, got %d", len(names), len(archives))
	}
	for i, archive := range archives {
		if archive.Path != names[i] {
			t.Fatalf("position %d: expected %s, got %s", i, names[i], archive.Path)
		}
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		run, err := store.BeginRun(ctx, fmt.Sprintf("dir-%d", i), 1)
		if err != nil {
			t.Fatalf("BeginRun %d failed: %v", i, err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected run order: got %s,%s", runs[0].ID, runs[1].ID)
	}
}

func TestStatsGroupsByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, cfg.Paths.ArchiveDir, 1)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	statuses := []catalog.Status{
		catalog.StatusCompleted,
		catalog.StatusCompleted,
		catalog.StatusFailed,
	}
	for i, status := range statuses {
		archive, err := store.AddArchive(ctx, run.ID, fmt.Sprintf("dump-%d.tar.gz", i))
		if err != nil {
			t.Fatalf("AddArchive failed: %v", err)
		}
		archive.Status = status
		if err := store.UpdateArchive(ctx, archive); err != nil {
			t.Fatalf("UpdateArchive failed: %v", err)
		}
	}

	stats, err := store.Stats(ctx, run.ID)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[catalog.StatusCompleted] != 2 || stats[catalog.StatusFailed] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := catalog.ParseStatus(" Completed "); !ok || status != catalog.StatusCompleted {
		t.Fatalf("expected completed, got %q ok=%v", status, ok)
	}
	if _, ok := catalog.ParseStatus("bogus"); ok {
		t.Fatal("expected bogus status to be rejected")
	}
	if !catalog.StatusFailed.IsTerminal() {
		t.Fatal("failed should be terminal")
	}
	if catalog.StatusRunning.IsTerminal() {
		t.Fatal("running should not be terminal")
	}
}

func TestFinishRunStampsTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, cfg.Paths.ArchiveDir, 1)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.FinishRun(ctx, run.ID); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched.FinishedAt == nil {
		t.Fatal("expected finished timestamp set")
	}
	if fetched.FinishedAt.Before(fetched.StartedAt) {
		t.Fatalf("finish %v before start %v", fetched.FinishedAt, fetched.StartedAt)
	}
}
