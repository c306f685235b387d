package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/formgate/pkg/diagnostics"
	"mercator-hq/formgate/pkg/logic/engine"
)

// Config contains configuration for the diagnostics recorder.
type Config struct {
	// Enabled enables recording. A disabled recorder discards every diagnostic.
	Enabled bool

	// BufferSize is the size of the async write channel buffer.
	// Default: 1000
	BufferSize int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		BufferSize:   1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes engine diagnostics to storage in the background.
type Recorder struct {
	storage    diagnostics.Storage
	config     *Config
	recordChan chan *diagnostics.Record
	done       chan struct{}
	closeOnce  sync.Once
	closed     atomic.Bool
	wg         sync.WaitGroup
	logger     *slog.Logger
	now        func() time.Time

	dropped atomic.Int64
	written atomic.Int64
	failed  atomic.Int64
}

// NewRecorder creates a recorder and starts its background worker.
func NewRecorder(storage diagnostics.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:    storage,
		config:     &cfg,
		recordChan: make(chan *diagnostics.Record, cfg.BufferSize),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "diagnostics.recorder"),
		now:        func() time.Time { return time.Now().UTC() },
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("diagnostics recorder initialized",
		"enabled", cfg.Enabled,
		"buffer_size", cfg.BufferSize,
		"write_timeout", cfg.WriteTimeout,
	)

	return r
}

// Report enqueues a diagnostic for writing. It returns immediately.
func (r *Recorder) Report(d engine.Diagnostic) {
	if !r.config.Enabled {
		return
	}
	if r.closed.Load() {
		r.dropped.Add(1)
		return
	}

	record := diagnostics.FromDiagnostic(d, r.now())
	record.ID = uuid.New().String()

	select {
	case r.recordChan <- record:
	default:
		r.dropped.Add(1)
		r.logger.Warn("diagnostics buffer full, dropping record",
			"form_id", record.FormID,
			"kind", record.Kind,
			"buffer_size", r.config.BufferSize,
		)
	}
}

// Stats returns how many records were written, failed to write, and were dropped.
func (r *Recorder) Stats() (written, failed, dropped int64) {
	return r.written.Load(), r.failed.Load(), r.dropped.Load()
}

// Close stops accepting diagnostics, drains the buffer and waits for pending writes.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down diagnostics recorder")
		r.closed.Store(true)
		close(r.done)
		r.wg.Wait()
		r.logger.Info("diagnostics recorder shut down complete",
			"written", r.written.Load(),
			"dropped", r.dropped.Load(),
		)
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Debug("draining diagnostics channel before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *diagnostics.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to store diagnostic",
			"record_id", record.ID,
			"form_id", record.FormID,
			"error", err,
		)
		return
	}
	r.written.Add(1)

	duration := time.Since(start)
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow diagnostics write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
