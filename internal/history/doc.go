// Package history persists one row per pipeline run in SQLite so failed
// alignments can be inspected after the fact and recent runs listed from
// the CLI.
//
// The schema is versioned. A database created by a different schema version
// is rejected with ErrSchemaMismatch; deleting the file recovers.
package history
