// Package catalog persists ingest run bookkeeping in SQLite.
//
// The Store manages database connections, schema migrations, and the two
// tables behind `orchard status`: runs (one row per ingest invocation) and
// archives (one row per source archive, carrying lifecycle status and the
// counters workers report as they progress). Counters survive cancellation
// so an interrupted run still shows the work that completed.
//
// The database is bookkeeping, not pipeline output; deleting it loses run
// history but no extracted data. Schema changes add a new migration file
// under migrations/.
package catalog
