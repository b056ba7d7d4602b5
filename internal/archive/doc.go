// Package archive streams entries out of ORCID public data file tars.
//
// Reader wraps archive/tar with transparent gzip or zstd decompression and a
// strict single-pass contract: each entry's body is only readable until the
// next entry is requested. Filter implements the education-record predicate
// and the seen/matched counters the ingest progress reporting relies on.
package archive
