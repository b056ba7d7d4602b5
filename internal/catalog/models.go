package catalog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an archive within an ingest run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusCanceled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCanceled:  {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status reflects finished work.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// Run represents one invocation of the ingest pipeline.
type Run struct {
	ID         string
	ArchiveDir string
	Workers    int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Archive represents one source archive processed during a run.
type Archive struct {
	ID             int64
	RunID          string
	Path           string
	Status         Status
	EntriesSeen    int64
	EntriesMatched int64
	ParseErrors    int64
	Records        int64
	Segments       int64
	ElapsedSeconds float64
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StartedAt      *time.Time
	FinishedAt     *time.Time
}

// MarkRunning records the moment a worker picked up the archive.
func (a *Archive) MarkRunning() {
	now := time.Now().UTC()
	a.Status = StatusRunning
	a.StartedAt = &now
}

// MarkCompleted finalizes the archive after a clean pass.
func (a *Archive) MarkCompleted() {
	a.finish(StatusCompleted)
}

// MarkFailed finalizes the archive with an error message.
func (a *Archive) MarkFailed(message string) {
	a.ErrorMessage = message
	a.finish(StatusFailed)
}

// MarkCanceled finalizes the archive after a cooperative stop.
// Counters accumulated so far stay intact.
func (a *Archive) MarkCanceled() {
	a.finish(StatusCanceled)
}

func (a *Archive) finish(status Status) {
	now := time.Now().UTC()
	a.Status = status
	a.FinishedAt = &now
	if a.StartedAt != nil {
		a.ElapsedSeconds = now.Sub(*a.StartedAt).Seconds()
	}
}
