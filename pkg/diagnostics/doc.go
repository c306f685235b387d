// Package diagnostics records operator-facing evaluation problems: conditions that
// point at fields which no longer exist, operators the comparison table has no entry
// for, condition trees that hit the depth ceiling, and partial validations that name
// unknown fields.
//
// # Architecture
//
// The package consists of three layers:
//
//  1. Recorder - receives engine diagnostics and enqueues them without blocking
//  2. Storage - persists records (in-memory or SQLite)
//  3. Retention - prunes old records on a cron schedule
//
// # Recording Flow
//
//	Engine evaluation
//	     ↓
//	Reporter.Report (recorder, non-blocking)
//	     ↓
//	Buffered channel → background worker
//	     ↓
//	Storage backend (SQLite, WAL mode)
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:    "data/diagnostics.db",
//	    Driver:  storage.DriverPureGo,
//	    WALMode: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, nil)
//	defer rec.Close()
//
//	eng, _ := engine.NewEngine(nil, rec, logger)
//
//	records, _ := store.Query(ctx, &diagnostics.Query{FormID: "signup", Limit: 50})
package diagnostics
