package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"orchard/internal/config"
)

// Store manages ingest run bookkeeping backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.CatalogPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the catalog database file.
func (s *Store) Path() string {
	return s.path
}

// BeginRun records a new ingest run and returns it.
func (s *Store) BeginRun(ctx context.Context, archiveDir string, workers int) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		ArchiveDir: archiveDir,
		Workers:    workers,
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, archive_dir, workers, started_at) VALUES (?, ?, ?, ?)`,
		run.ID,
		run.ArchiveDir,
		run.Workers,
		run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the run's completion time.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun fetches a run by identifier.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// RecentRuns returns the newest runs first, up to limit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AddArchive registers a pending archive under a run.
func (s *Store) AddArchive(ctx context.Context, runID, path string) (*Archive, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO archives (run_id, path, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID,
		path,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert archive: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetArchive(ctx, id)
}

// GetArchive fetches an archive row by identifier.
func (s *Store) GetArchive(ctx context.Context, id int64) (*Archive, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+archiveColumns+` FROM archives WHERE id = ?`, id)
	archive, err := scanArchive(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get archive: %w", err)
	}
	return archive, nil
}

// UpdateArchive persists the mutable fields of an archive row.
func (s *Store) UpdateArchive(ctx context.Context, archive *Archive) error {
	if archive == nil {
		return errors.New("archive is nil")
	}
	archive.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE archives
         SET status = ?, entries_seen = ?, entries_matched = ?, parse_errors = ?,
             records = ?, segments = ?, elapsed_seconds = ?, error_message = ?,
             updated_at = ?, started_at = ?, finished_at = ?
         WHERE id = ?`,
		archive.Status,
		archive.EntriesSeen,
		archive.EntriesMatched,
		archive.ParseErrors,
		archive.Records,
		archive.Segments,
		archive.ElapsedSeconds,
		nullableString(archive.ErrorMessage),
		archive.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(archive.StartedAt),
		nullableTime(archive.FinishedAt),
		archive.ID,
	)
	if err != nil {
		return fmt.Errorf("update archive: %w", err)
	}
	return nil
}

// ArchivesByRun returns a run's archive rows in insertion order.
func (s *Store) ArchivesByRun(ctx context.Context, runID string) ([]*Archive, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+archiveColumns+` FROM archives WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query archives by run: %w", err)
	}
	defer rows.Close()

	var archives []*Archive
	for rows.Next() {
		archive, err := scanArchive(rows)
		if err != nil {
			return nil, err
		}
		archives = append(archives, archive)
	}
	return archives, rows.Err()
}

// Stats returns a count of a run's archives grouped by status.
func (s *Store) Stats(ctx context.Context, runID string) (map[Status]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1) FROM archives WHERE run_id = ? GROUP BY status`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("archive stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

const runColumns = "id, archive_dir, workers, started_at, finished_at"

const archiveColumns = "id, run_id, path, status, entries_seen, entries_matched, parse_errors, records, segments, elapsed_seconds, error_message, created_at, updated_at, started_at, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          string
		archiveDir  string
		workers     int
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)

	if err := scanner.Scan(&id, &archiveDir, &workers, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}

	run := &Run{ID: id, ArchiveDir: archiveDir, Workers: workers}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func scanArchive(scanner interface{ Scan(dest ...any) error }) (*Archive, error) {
	var (
		id             int64
		runID          string
		path           string
		statusStr      string
		entriesSeen    int64
		entriesMatched int64
		parseErrors    int64
		records        int64
		segments       int64
		elapsedSeconds float64
		errorMessage   sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
		startedRaw     sql.NullString
		finishedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&path,
		&statusStr,
		&entriesSeen,
		&entriesMatched,
		&parseErrors,
		&records,
		&segments,
		&elapsedSeconds,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	archive := &Archive{
		ID:             id,
		RunID:          runID,
		Path:           path,
		Status:         Status(statusStr),
		EntriesSeen:    entriesSeen,
		EntriesMatched: entriesMatched,
		ParseErrors:    parseErrors,
		Records:        records,
		Segments:       segments,
		ElapsedSeconds: elapsedSeconds,
		ErrorMessage:   errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		archive.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		archive.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			archive.StartedAt = &started
		}
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			archive.FinishedAt = &finished
		}
	}
	return archive, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
