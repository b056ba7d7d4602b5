// Package census surveys which element paths occur across education
// documents, as an aid for choosing extraction columns.
//
// Unlike ingest, a census is a single sequential pass and aborts on the
// first unreadable archive: a partial census would silently skew the
// counts it exists to report.
package census
