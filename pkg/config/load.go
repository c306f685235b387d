package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "FORMGATE"

// LoadConfig loads configuration from the file at path (YAML, JSON or TOML,
// chosen by extension). It applies default values, validates the configuration,
// and returns any errors. Environment variables are ignored; use
// LoadConfigWithEnvOverrides for that.
//
// An empty path yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	return LoadFromViper(v, path)
}

// LoadConfigWithEnvOverrides loads configuration from a file and applies
// environment variable overrides. Environment variables follow the naming
// convention FORMGATE_SECTION_FIELD (e.g., FORMGATE_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Seed default values
// 2. Load the file, when path is not empty
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	return LoadFromViper(NewViper(), path)
}

// NewViper returns a viper instance seeded with defaults and bound to
// FORMGATE_* environment variables. Callers may bind command-line flags to it
// before passing it to LoadFromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper reads path into v (when not empty), decodes the merged settings,
// applies defaults and validates the result.
func LoadFromViper(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
			}
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that are
// absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("forms.path", DefaultFormsPath)
	v.SetDefault("forms.watch", DefaultFormsWatch)
	v.SetDefault("forms.debounce", DefaultFormsDebounce)
	v.SetDefault("forms.extensions", DefaultFormsExtensions())
	v.SetDefault("forms.max_file_size", DefaultFormsMaxFileSize)
	v.SetDefault("forms.strict", DefaultFormsStrict)
	v.SetDefault("forms.skip_hidden", DefaultFormsSkipHidden)

	v.SetDefault("engine.max_depth", DefaultEngineMaxDepth)
	v.SetDefault("engine.parallelism", DefaultEngineParallelism)
	v.SetDefault("engine.parallel_threshold", DefaultEngineParallelThreshold)

	v.SetDefault("diagnostics.enabled", DefaultDiagnosticsEnabled)
	v.SetDefault("diagnostics.backend", DefaultDiagnosticsBackend)
	v.SetDefault("diagnostics.buffer_size", DefaultDiagnosticsBufferSize)
	v.SetDefault("diagnostics.write_timeout", DefaultDiagnosticsWriteTimeout)
	v.SetDefault("diagnostics.sqlite.path", DefaultSQLitePath)
	v.SetDefault("diagnostics.sqlite.driver", DefaultSQLiteDriver)
	v.SetDefault("diagnostics.sqlite.wal_mode", DefaultSQLiteWALMode)
	v.SetDefault("diagnostics.sqlite.busy_timeout", DefaultSQLiteBusyTimeout)
	v.SetDefault("diagnostics.sqlite.max_open_conns", DefaultSQLiteMaxOpenConns)
	v.SetDefault("diagnostics.sqlite.max_idle_conns", DefaultSQLiteMaxIdleConns)
	v.SetDefault("diagnostics.retention.days", DefaultRetentionDays)
	v.SetDefault("diagnostics.retention.max_records", DefaultRetentionMaxRecords)
	v.SetDefault("diagnostics.retention.schedule", DefaultRetentionSchedule)
	v.SetDefault("diagnostics.retention.archive_path", "")

	v.SetDefault("telemetry.logging.level", DefaultLoggingLevel)
	v.SetDefault("telemetry.logging.format", DefaultLoggingFormat)
	v.SetDefault("telemetry.logging.add_source", false)
	v.SetDefault("telemetry.logging.redact_pii", DefaultLoggingRedactPII)
	v.SetDefault("telemetry.metrics.enabled", DefaultMetricsEnabled)
	v.SetDefault("telemetry.metrics.path", DefaultMetricsPath)
	v.SetDefault("telemetry.metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("telemetry.metrics.subsystem", DefaultMetricsSubsystem)
	v.SetDefault("telemetry.tracing.enabled", DefaultTracingEnabled)
	v.SetDefault("telemetry.tracing.sampler", DefaultTracingSampler)
	v.SetDefault("telemetry.tracing.sample_ratio", DefaultTracingSampleRatio)
	v.SetDefault("telemetry.tracing.endpoint", "")
	v.SetDefault("telemetry.tracing.service_name", DefaultTracingServiceName)
	v.SetDefault("telemetry.tracing.insecure", DefaultTracingInsecure)
	v.SetDefault("telemetry.tracing.timeout", DefaultTracingTimeout)
	v.SetDefault("telemetry.health.enabled", DefaultHealthEnabled)
	v.SetDefault("telemetry.health.liveness_path", DefaultLivenessPath)
	v.SetDefault("telemetry.health.readiness_path", DefaultReadinessPath)
	v.SetDefault("telemetry.health.check_timeout", DefaultHealthCheckTimeout)

	v.SetDefault("server.listen_address", DefaultListenAddress)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.idle_timeout", DefaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.max_body_bytes", DefaultMaxBodyBytes)
}
