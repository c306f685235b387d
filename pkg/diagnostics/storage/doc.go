// Package storage provides diagnostic storage backends.
//
// MemoryStorage keeps records in a map and suits tests and short-lived CLI runs.
// SQLiteStorage persists records in a single table with WAL mode enabled; it can
// run on the cgo driver (github.com/mattn/go-sqlite3, "sqlite3") or the pure-Go
// driver (modernc.org/sqlite, "sqlite").
//
// Timestamps are stored as Unix nanoseconds so both drivers read them back
// identically.
package storage
