// Package sqlite provides the SQLite-backed metadata catalog.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. The Store owns one database and exposes
// the driven.Catalog port through Catalog().
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory (NNN_name.up.sql). Files live in the files table, chunks
// in chunks keyed by (file_id, chunk_index) with ON DELETE CASCADE, and deleted
// ids in deleted_files so they are never reused.
//
// # Data Location
//
// By default, the database is stored at ~/.knowbase/data/knowbase.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode with
// a busy timeout, and write transactions begin IMMEDIATE so concurrent writers
// queue at BEGIN instead of failing on lock upgrade.
package sqlite
