// Package recorder persists engine diagnostics asynchronously.
//
// Recorder implements the engine's Reporter port. Report never blocks evaluation:
// records go onto a buffered channel drained by a single background worker, and a
// full buffer drops the record and counts it.
//
//	rec := recorder.NewRecorder(store, &recorder.Config{Enabled: true, BufferSize: 1000})
//	defer rec.Close()
//
//	eng, _ := engine.NewEngine(cfg, rec, logger)
package recorder
