// Package segment persists batches of flat records as CSV segment files.
//
// Each archive gets its own writer and its own numbered segment sequence, so
// concurrent workers never contend for a file. Segments appear atomically:
// rows go to a temp file that is renamed into place only after a complete
// flush, which keeps partially written output invisible to downstream
// stages. Peak memory is bounded by the batch threshold, and the record
// buffer is reused across flushes.
package segment
