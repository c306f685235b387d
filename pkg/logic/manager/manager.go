package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/formgate/pkg/config"
	"mercator-hq/formgate/pkg/form/ast"
	"mercator-hq/formgate/pkg/logic/engine"
	"mercator-hq/formgate/pkg/telemetry/logging"
	"mercator-hq/formgate/pkg/telemetry/metrics"
	"mercator-hq/formgate/pkg/telemetry/tracing"
)

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics records evaluations, reloads and diagnostics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Manager) {
		m.metrics = c
	}
}

// WithTracer wraps evaluations in spans created by t.
func WithTracer(t *tracing.Tracer) Option {
	return func(m *Manager) {
		m.tracer = t
	}
}

// Manager owns the loaded form set and evaluates submissions against it.
// It coordinates loading, registration, hot reload and instrumented evaluation.
type Manager struct {
	config   config.FormsConfig
	loader   *FormLoader
	registry *FormRegistry
	engine   *engine.Engine
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	logger   *slog.Logger

	mu            sync.Mutex
	loaded        bool
	lastLoadTime  time.Time
	lastLoadError error

	watchMu     sync.Mutex
	watchCancel context.CancelFunc
}

// NewManager creates a manager from the forms and engine sections of cfg.
// Engine diagnostics are counted in metrics and forwarded to reporter, which may
// be nil.
func NewManager(cfg *config.Config, reporter engine.Reporter, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		config:   cfg.Forms,
		registry: NewFormRegistry(),
		logger:   logger.With("component", "form_manager"),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.loader = NewFormLoader(LoaderConfigFrom(cfg.Forms, cfg.Engine.MaxDepth), m.logger)

	engineConfig := engine.DefaultEngineConfig().
		WithMaxDepth(cfg.Engine.MaxDepth).
		WithParallelism(cfg.Engine.Parallelism).
		WithParallelThreshold(cfg.Engine.ParallelThreshold).
		WithMessages(cfg.Engine.Messages)

	eng, err := engine.NewEngine(engineConfig, m.diagnosticReporter(reporter), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	m.engine = eng

	return m, nil
}

func (m *Manager) diagnosticReporter(next engine.Reporter) engine.Reporter {
	return engine.ReporterFunc(func(d engine.Diagnostic) {
		m.metrics.RecordDiagnostic(string(d.Kind))
		if next != nil {
			next.Report(d)
		}
	})
}

// Engine returns the underlying evaluation engine.
func (m *Manager) Engine() *engine.Engine {
	return m.engine
}

// Load loads every form under the configured path and registers them.
// Any failing file fails the whole load.
func (m *Manager) Load() error {
	return m.load("Loading forms", "Forms loaded successfully", "Failed to load forms")
}

// Reload reloads the configured path. On failure the previously registered forms
// stay in service and the error is returned.
func (m *Manager) Reload() error {
	err := m.load("Reloading forms", "Forms reloaded successfully",
		"Failed to reload forms, keeping previous forms")
	if err != nil {
		m.metrics.RecordReload(ReloadFailure)
		return err
	}
	m.metrics.RecordReload(ReloadSuccess)
	return nil
}

func (m *Manager) load(startMsg, okMsg, failMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, span := m.tracer.Start(context.Background(), tracing.SpanLoadForms)
	defer span.End()

	startTime := time.Now()
	m.logger.Info(startMsg, "path", m.config.Path)

	loaded, err := m.loader.Load(m.config.Path)
	if err == nil {
		err = m.registry.Replace(loaded)
	}
	tracing.SetLoadAttributes(span, m.config.Path, len(loaded))
	tracing.SetStatus(span, err)
	if err != nil {
		m.lastLoadError = err
		m.logger.Error(failMsg,
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return err
	}

	m.loaded = true
	m.lastLoadTime = time.Now()
	m.lastLoadError = nil
	m.metrics.SetFormsLoaded(len(loaded))

	m.logger.Info(okMsg,
		"count", len(loaded),
		"version", m.registry.Version(),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return nil
}

// Watch reloads forms when files under the configured path change. It blocks until
// ctx is cancelled or Close is called.
func (m *Manager) Watch(ctx context.Context) error {
	if !m.config.Watch {
		return ErrWatchDisabled
	}

	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchMu.Unlock()
		return errors.New("watch already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.watchCancel = cancel
	m.watchMu.Unlock()

	defer func() {
		m.watchMu.Lock()
		m.watchCancel = nil
		m.watchMu.Unlock()
		cancel()
	}()

	watcher, err := NewFileWatcher(&FileWatcherConfig{
		Path:             m.config.Path,
		DebounceInterval: m.config.Debounce,
		Extensions:       m.loader.config.Extensions,
		SkipHidden:       m.config.SkipHidden,
	}, m.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	m.logger.Info("Starting form watcher", "path", m.config.Path)
	return watcher.Watch(ctx, m.Reload)
}

// Close stops a running Watch.
func (m *Manager) Close() error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchCancel()
	}
	m.watchMu.Unlock()
	return nil
}

// Form returns the form registered under id or a *FormNotFoundError.
func (m *Manager) Form(id string) (*ast.Form, error) {
	f, ok := m.registry.Get(id)
	if !ok {
		return nil, &FormNotFoundError{FormID: id}
	}
	return f, nil
}

// Forms returns every registered form sorted by id.
func (m *Manager) Forms() []*ast.Form {
	return m.registry.Forms()
}

// Metadata returns a summary of every registered form sorted by id.
func (m *Manager) Metadata() []FormMetadata {
	return m.registry.Metadata()
}

// Version returns the content hash of the registered form set.
func (m *Manager) Version() string {
	return m.registry.Version()
}

// Stats returns registry statistics.
func (m *Manager) Stats() RegistryStats {
	return m.registry.Stats()
}

// LastLoad returns the time of the last successful load and the error of the last
// attempt, if it failed.
func (m *Manager) LastLoad() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoadTime, m.lastLoadError
}

// Ready reports whether forms are being served. It is used as a readiness check.
func (m *Manager) Ready(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		if m.lastLoadError != nil {
			return fmt.Errorf("%w: %v", ErrNotLoaded, m.lastLoadError)
		}
		return ErrNotLoaded
	}
	return nil
}

// ValidateFields resolves the form and validates only fieldIDs (live validation).
// Field errors are reported in the result, not as an error.
func (m *Manager) ValidateFields(ctx context.Context, formID string, data engine.Submission, fieldIDs ...string) (*engine.EvaluationResult, error) {
	return m.evaluate(ctx, tracing.SpanValidateFields, formID, data, engine.ModePartial, fieldIDs)
}

// ValidateSubmission resolves and validates the whole form. When any visible field
// fails the result is returned together with its *engine.SubmissionError.
func (m *Manager) ValidateSubmission(ctx context.Context, formID string, data engine.Submission) (*engine.EvaluationResult, error) {
	result, err := m.evaluate(ctx, tracing.SpanValidateSubmission, formID, data, engine.ModeComplete, nil)
	if err != nil {
		return nil, err
	}
	return result, result.Err()
}

func (m *Manager) evaluate(ctx context.Context, spanName, formID string, data engine.Submission, mode engine.Mode, fieldIDs []string) (*engine.EvaluationResult, error) {
	ctx = logging.WithFormID(ctx, formID)
	ctx, span := m.tracer.Start(ctx, spanName)
	defer span.End()

	start := time.Now()

	f, err := m.Form(formID)
	if err != nil {
		tracing.SetStatus(span, err)
		m.metrics.RecordEvaluation(formID, string(mode), OutcomeError, time.Since(start))
		return nil, err
	}

	fields := len(fieldIDs)
	if mode == engine.ModeComplete {
		fields = len(f.Fields)
	}
	tracing.SetEvaluationAttributes(span, f.ID, f.Version, string(mode), fields)

	result, err := m.engine.Evaluate(f, data, mode, fieldIDs...)
	duration := time.Since(start)
	if err != nil {
		tracing.SetStatus(span, err)
		m.metrics.RecordEvaluation(f.ID, string(mode), OutcomeError, duration)
		m.logger.ErrorContext(ctx, "Evaluation failed", "mode", string(mode), "error", err)
		return nil, err
	}

	errorCount := result.ErrorCount()
	tracing.SetResultAttributes(span, errorCount)
	tracing.SetStatus(span, nil)

	outcome := OutcomeValid
	if errorCount > 0 {
		outcome = OutcomeInvalid
		for _, fr := range result.Fields {
			for _, e := range fr.Errors {
				m.metrics.RecordValidationError(f.ID, e.Reason)
			}
		}
	}
	m.metrics.RecordEvaluation(f.ID, string(mode), outcome, duration)

	m.logger.DebugContext(ctx, "Form evaluated",
		"mode", string(mode),
		"fields", fields,
		"errors", errorCount,
		"diagnostics", len(result.Diagnostics),
		"duration_us", duration.Microseconds(),
	)
	return result, nil
}
