// Package sqlite provides the persistent CollectionStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, accessed through github.com/jmoiron/sqlx.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// A collection row records the vector dimension fixed by its first insert;
// chunk rows carry the embedding as a little-endian float32 BLOB and metadata
// as JSON.
//
// # Search
//
// Queries are exact: every vector in the collection is scored by cosine
// distance and the closest topK are returned. Ties keep insertion order.
//
// # Data Location
//
// The database file is index.db inside the configured db path (default ./db).
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on SQLite
// locking in WAL mode.
package sqlite
