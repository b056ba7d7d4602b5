// Package ingest extracts education records from ORCID archive dumps.
//
// The Coordinator fans archives out to a bounded worker pool; each worker
// streams one archive end to end, filtering educations/*.xml entries,
// flattening them into dotted-key records, and writing batched CSV segments.
// Malformed documents are counted and skipped; container or write failures
// abandon the archive without disturbing its siblings. Outcomes and counters
// land in the catalog so interrupted runs remain inspectable.
package ingest
