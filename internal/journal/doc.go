// Package journal persists a history of character exports in SQLite.
//
// The journal is informational: exports never read it back to decide what to
// do, so deleting the database only loses history. A schema version mismatch
// is reported with ErrSchemaMismatch instead of being migrated.
package journal
