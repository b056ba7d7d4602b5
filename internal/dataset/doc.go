// Package dataset is the CSV plumbing shared by the post-ingest stages.
//
// Reader streams rows with a header index so stages can address columns by
// name without loading files into memory. Writer publishes atomically via a
// temp file and rename, mirroring how ingest publishes segments.
package dataset
