// Package manager loads form definitions from disk, keeps them in a registry and
// evaluates submissions against them.
//
// # Core Components
//
// Manager coordinates loading, registration, hot reload and evaluation. Every
// evaluation runs in a tracing span and is counted in metrics; engine diagnostics
// are counted and forwarded to the configured Reporter.
//
// FormLoader reads a single form file or every form file below a directory,
// enforcing size limits and UTF-8 before parsing and validating.
//
// FormRegistry holds the loaded forms by id and swaps the whole set atomically.
//
// FileWatcher watches the forms path with fsnotify and triggers debounced reloads.
// A reload that fails keeps the previous forms in service.
//
// # Basic Usage
//
//	m, err := manager.NewManager(cfg, recorder, logger,
//	    manager.WithMetrics(collector),
//	    manager.WithTracer(tracer),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := m.Load(); err != nil {
//	    return err
//	}
//	go m.Watch(ctx)
//
//	result, err := m.ValidateSubmission(ctx, "signup", engine.Submission{"email": "a@b.co"})
//	var invalid *engine.SubmissionError
//	if errors.As(err, &invalid) {
//	    // 422 with invalid.Fields
//	}
package manager
