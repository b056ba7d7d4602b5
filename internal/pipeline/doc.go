// Package pipeline defines the failure taxonomy shared by the processing
// stages.
//
// Each sentinel marker classifies how a failure propagates: per-file failures
// (ErrParse) and per-archive failures (ErrArchiveRead) are counted and
// isolated so sibling work continues, while output and configuration failures
// abort the owning worker or the whole run. The Wrap helper tags errors with
// a marker plus stage context so callers can classify them with errors.Is and
// run summaries can report skipped and abandoned units instead of losing data
// silently.
package pipeline
