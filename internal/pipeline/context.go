package pipeline

import "context"

type contextKey string

const (
	runIDContextKey   contextKey = "orchard.run_id"
	stageContextKey   contextKey = "orchard.stage"
	archiveContextKey contextKey = "orchard.archive"
)

// WithRunID annotates ctx with the ingest run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDContextKey, runID)
}

// RunIDFromContext extracts the run identifier when present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDContextKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithStage annotates ctx with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageContextKey, stage)
}

// StageFromContext extracts the stage name when present.
func StageFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	stage, ok := ctx.Value(stageContextKey).(string)
	if !ok || stage == "" {
		return "", false
	}
	return stage, true
}

// WithArchive annotates ctx with the archive path being processed.
func WithArchive(ctx context.Context, archive string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if archive == "" {
		return ctx
	}
	return context.WithValue(ctx, archiveContextKey, archive)
}

// ArchiveFromContext extracts the archive path when present.
func ArchiveFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	archive, ok := ctx.Value(archiveContextKey).(string)
	if !ok || archive == "" {
		return "", false
	}
	return archive, true
}
