package ingest

import (
	"time"

	"orchard/internal/catalog"
)

// Progress is a point-in-time snapshot of one archive's counters, delivered
// to the progress callback roughly every progress_interval matched entries.
type Progress struct {
	Archive        string
	EntriesSeen    int64
	EntriesMatched int64
	ParseErrors    int64
	Records        int64
}

// ArchiveResult captures the terminal state of one archive within a run.
type ArchiveResult struct {
	Path           string
	Status         catalog.Status
	EntriesSeen    int64
	EntriesMatched int64
	ParseErrors    int64
	Records        int64
	Segments       []string
	Elapsed        time.Duration
	Err            error
}

// Report summarizes an ingest run archive by archive. A run is never reduced
// to a single boolean; callers inspect per-archive statuses.
type Report struct {
	RunID    string
	Archives []ArchiveResult
}

// Completed returns the number of archives that finished cleanly.
func (r *Report) Completed() int {
	return r.countByStatus(catalog.StatusCompleted)
}

// Failed returns the number of archives that terminated with an error.
func (r *Report) Failed() int {
	return r.countByStatus(catalog.StatusFailed)
}

// Canceled returns the number of archives interrupted by cancellation.
func (r *Report) Canceled() int {
	return r.countByStatus(catalog.StatusCanceled)
}

// Records returns the total record count flushed across all archives.
func (r *Report) Records() int64 {
	var total int64
	for _, archive := range r.Archives {
		total += archive.Records
	}
	return total
}

// SegmentCount returns the total number of segments written across archives.
func (r *Report) SegmentCount() int {
	total := 0
	for _, archive := range r.Archives {
		total += len(archive.Segments)
	}
	return total
}

func (r *Report) countByStatus(status catalog.Status) int {
	count := 0
	for _, archive := range r.Archives {
		if archive.Status == status {
			count++
		}
	}
	return count
}
