package config

import "time"

// Default values for configuration fields.
const (
	// Forms defaults
	DefaultFormsPath        = "./forms"
	DefaultFormsWatch       = false
	DefaultFormsDebounce    = 100 * time.Millisecond
	DefaultFormsMaxFileSize = int64(1 << 20)
	DefaultFormsStrict      = false
	DefaultFormsSkipHidden  = true

	// Engine defaults
	DefaultEngineMaxDepth          = 10
	DefaultEngineParallelism       = 1
	DefaultEngineParallelThreshold = 64

	// Diagnostics defaults
	DefaultDiagnosticsEnabled      = true
	DefaultDiagnosticsBackend      = "sqlite"
	DefaultDiagnosticsBufferSize   = 1000
	DefaultDiagnosticsWriteTimeout = 5 * time.Second
	DefaultSQLitePath              = "data/diagnostics.db"
	DefaultSQLiteDriver            = "sqlite"
	DefaultSQLiteWALMode           = true
	DefaultSQLiteBusyTimeout       = 5 * time.Second
	DefaultSQLiteMaxOpenConns      = 10
	DefaultSQLiteMaxIdleConns      = 5
	DefaultRetentionDays           = 30
	DefaultRetentionSchedule       = "0 3 * * *"
	DefaultRetentionMaxRecords     = int64(0)

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedactPII   = true
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "formgate"
	DefaultMetricsSubsystem   = "engine"
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingServiceName = "formgate"
	DefaultTracingInsecure    = true
	DefaultTracingTimeout     = 10 * time.Second
	DefaultHealthEnabled      = true
	DefaultLivenessPath       = "/healthz"
	DefaultReadinessPath      = "/readyz"
	DefaultHealthCheckTimeout = 5 * time.Second

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodyBytes    = int64(1 << 20)
)

// DefaultFormsExtensions returns the file extensions loaded by default.
func DefaultFormsExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

// DefaultDurationBuckets returns the evaluation duration histogram buckets in
// seconds. Evaluations are in-memory, so the buckets start in microseconds.
func DefaultDurationBuckets() []float64 {
	return []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
}

// NewDefaultConfig returns a configuration with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Forms: FormsConfig{
			SkipHidden: DefaultFormsSkipHidden,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled: DefaultDiagnosticsEnabled,
			SQLite:  SQLiteConfig{WALMode: DefaultSQLiteWALMode},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactPII: DefaultLoggingRedactPII},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{Insecure: DefaultTracingInsecure},
			Health:  HealthConfig{Enabled: DefaultHealthEnabled},
		},
	}
	ApplyDefaults(cfg)
	cfg.Diagnostics.Retention.Days = DefaultRetentionDays
	cfg.Diagnostics.Retention.Schedule = DefaultRetentionSchedule
	cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values. Booleans, the
// retention settings and the sample ratio are left alone because zero is a
// meaningful value for them; the loader seeds those before unmarshalling.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	applyFormsDefaults(&cfg.Forms)
	applyEngineDefaults(&cfg.Engine)
	applyDiagnosticsDefaults(&cfg.Diagnostics)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyServerDefaults(&cfg.Server)
}

func applyFormsDefaults(cfg *FormsConfig) {
	if cfg.Path == "" {
		cfg.Path = DefaultFormsPath
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultFormsDebounce
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultFormsExtensions()
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultFormsMaxFileSize
	}
}

func applyEngineDefaults(cfg *EngineConfig) {
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultEngineMaxDepth
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = DefaultEngineParallelism
	}
	if cfg.ParallelThreshold == 0 {
		cfg.ParallelThreshold = DefaultEngineParallelThreshold
	}
}

func applyDiagnosticsDefaults(cfg *DiagnosticsConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultDiagnosticsBackend
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultDiagnosticsBufferSize
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultDiagnosticsWriteTimeout
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultSQLitePath
	}
	if cfg.SQLite.Driver == "" {
		cfg.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.SQLite.MaxOpenConns == 0 {
		cfg.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.SQLite.MaxIdleConns == 0 {
		cfg.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = DefaultDurationBuckets()
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}

	if cfg.Health.LivenessPath == "" {
		cfg.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Health.ReadinessPath == "" {
		cfg.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
}
