package config

import "time"

// Config is the root configuration structure for formgate.
type Config struct {
	// Forms controls where form definitions come from and how they are loaded.
	Forms FormsConfig `yaml:"forms" mapstructure:"forms"`

	// Engine tunes the evaluation engine.
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`

	// Diagnostics controls recording, storage and retention of evaluation
	// diagnostics.
	Diagnostics DiagnosticsConfig `yaml:"diagnostics" mapstructure:"diagnostics"`

	// Telemetry contains logging, metrics, tracing and health configuration.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// Server contains the HTTP listener used by `formgate serve`.
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// FormsConfig contains configuration for loading form definitions.
type FormsConfig struct {
	// Path is a form file or a directory searched recursively.
	// Default: "./forms"
	Path string `yaml:"path" mapstructure:"path" validate:"required"`

	// Watch reloads forms when files under Path change.
	// Default: false
	Watch bool `yaml:"watch" mapstructure:"watch"`

	// Debounce is the quiet period after a file change before reloading.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce" validate:"gte=0"`

	// Extensions lists the file extensions treated as form documents.
	// Default: [".yaml", ".yml", ".json"]
	Extensions []string `yaml:"extensions" mapstructure:"extensions" validate:"min=1,dive,startswith=."`

	// MaxFileSize is the maximum form document size in bytes.
	// Default: 1MB
	MaxFileSize int64 `yaml:"max_file_size" mapstructure:"max_file_size" validate:"gt=0"`

	// Strict promotes validation warnings (stale references, inapplicable
	// operators) to load errors.
	// Default: false
	Strict bool `yaml:"strict" mapstructure:"strict"`

	// SkipHidden ignores files and directories whose names start with a dot.
	// Default: true
	SkipHidden bool `yaml:"skip_hidden" mapstructure:"skip_hidden"`
}

// EngineConfig contains evaluation engine configuration.
type EngineConfig struct {
	// MaxDepth bounds condition nesting, both when loading and when evaluating.
	// Default: 10
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth" validate:"gte=1,lte=1000"`

	// Parallelism is the number of fields evaluated concurrently. Values below 2
	// evaluate sequentially.
	// Default: 1
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism" validate:"gte=0"`

	// ParallelThreshold is the minimum field count before Parallelism applies.
	// Default: 64
	ParallelThreshold int `yaml:"parallel_threshold" mapstructure:"parallel_threshold" validate:"gte=0"`

	// Messages overrides error message templates by reason code, e.g.
	// required: "Please fill in {label}."
	Messages map[string]string `yaml:"messages" mapstructure:"messages" validate:"dive,required"`
}

// DiagnosticsConfig contains diagnostics configuration.
type DiagnosticsConfig struct {
	// Enabled controls whether diagnostics are recorded.
	// Default: true
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Backend selects the storage backend.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend" mapstructure:"backend" validate:"oneof=sqlite memory"`

	// BufferSize is the recorder's async channel size.
	// Default: 1000
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size" validate:"gt=0"`

	// WriteTimeout bounds a single storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gt=0"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite" mapstructure:"sqlite"`

	// Retention contains retention configuration.
	Retention RetentionConfig `yaml:"retention" mapstructure:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/diagnostics.db"
	Path string `yaml:"path" mapstructure:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go, modernc.org/sqlite)
	// Default: "sqlite"
	Driver string `yaml:"driver" mapstructure:"driver" validate:"oneof=sqlite3 sqlite"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode" mapstructure:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" mapstructure:"busy_timeout" validate:"gte=0"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns" mapstructure:"max_open_conns" validate:"gte=0"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns" validate:"gte=0"`
}

// RetentionConfig contains diagnostics retention configuration.
type RetentionConfig struct {
	// Days is the number of days to keep records. 0 keeps them forever.
	// Default: 30
	Days int `yaml:"days" mapstructure:"days" validate:"gte=0,lte=3650"`

	// MaxRecords is the maximum number of records to keep. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records" mapstructure:"max_records" validate:"gte=0"`

	// Schedule is a cron expression for pruning. Empty disables scheduled pruning.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule" mapstructure:"schedule"`

	// ArchivePath, when set, receives JSON archives of pruned records.
	ArchivePath string `yaml:"archive_path" mapstructure:"archive_path"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Health  HealthConfig  `yaml:"health" mapstructure:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json text"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source" mapstructure:"add_source"`

	// RedactPII masks e-mail addresses, phone numbers and the custom patterns
	// below in log attributes. Submitted values never reach the logs in clear.
	// Default: true
	RedactPII bool `yaml:"redact_pii" mapstructure:"redact_pii"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns" mapstructure:"redact_patterns" validate:"dive"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Pattern     string `yaml:"pattern" mapstructure:"pattern" validate:"required"`
	Replacement string `yaml:"replacement" mapstructure:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path" mapstructure:"path" validate:"omitempty,startswith=/"`

	// Namespace is the metric name prefix.
	// Default: "formgate"
	Namespace string `yaml:"namespace" mapstructure:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem" mapstructure:"subsystem"`

	// DurationBuckets defines histogram buckets for evaluation duration (seconds).
	// Default: 50µs to 1s
	DurationBuckets []float64 `yaml:"duration_buckets" mapstructure:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler" mapstructure:"sampler" validate:"oneof=always never ratio"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio" mapstructure:"sample_ratio" validate:"gte=0,lte=1"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`

	// ServiceName is the service name in traces.
	// Default: "formgate"
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`

	// Timeout is the OTLP export timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// LivenessPath is the liveness probe path.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path" mapstructure:"liveness_path" validate:"omitempty,startswith=/"`

	// ReadinessPath is the readiness probe path.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path" mapstructure:"readiness_path" validate:"omitempty,startswith=/"`

	// CheckTimeout bounds each component check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout" mapstructure:"check_timeout" validate:"gte=0,lte=60s"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// ListenAddress is the address to bind.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address" mapstructure:"listen_address" validate:"required,hostname_port"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gt=0"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gt=0"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gt=0"`

	// MaxBodyBytes limits submission bodies accepted by the HTTP API.
	// Default: 1MB
	MaxBodyBytes int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gt=0"`
}
