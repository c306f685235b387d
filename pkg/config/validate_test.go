package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorsIsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(cfg *Config)
		wantFields []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:       "empty forms path",
			mutate:     func(cfg *Config) { cfg.Forms.Path = "" },
			wantFields: []string{"forms.path"},
		},
		{
			name:       "extension without dot",
			mutate:     func(cfg *Config) { cfg.Forms.Extensions = []string{"yaml"} },
			wantFields: []string{"forms.extensions[0]"},
		},
		{
			name:       "max depth out of range",
			mutate:     func(cfg *Config) { cfg.Engine.MaxDepth = 0 },
			wantFields: []string{"engine.max_depth"},
		},
		{
			name:       "empty message template",
			mutate:     func(cfg *Config) { cfg.Engine.Messages = map[string]string{"required": ""} },
			wantFields: []string{"engine.messages[required]"},
		},
		{
			name:       "unknown backend",
			mutate:     func(cfg *Config) { cfg.Diagnostics.Backend = "postgres" },
			wantFields: []string{"diagnostics.backend"},
		},
		{
			name:       "unknown sqlite driver",
			mutate:     func(cfg *Config) { cfg.Diagnostics.SQLite.Driver = "pgx" },
			wantFields: []string{"diagnostics.sqlite.driver"},
		},
		{
			name:       "sqlite without path",
			mutate:     func(cfg *Config) { cfg.Diagnostics.SQLite.Path = "" },
			wantFields: []string{"diagnostics.sqlite.path"},
		},
		{
			name: "idle above open connections",
			mutate: func(cfg *Config) {
				cfg.Diagnostics.SQLite.MaxOpenConns = 2
				cfg.Diagnostics.SQLite.MaxIdleConns = 4
			},
			wantFields: []string{"diagnostics.sqlite.max_idle_conns"},
		},
		{
			name:       "bad cron schedule",
			mutate:     func(cfg *Config) { cfg.Diagnostics.Retention.Schedule = "every day" },
			wantFields: []string{"diagnostics.retention.schedule"},
		},
		{
			name:       "negative retention",
			mutate:     func(cfg *Config) { cfg.Diagnostics.Retention.Days = -1 },
			wantFields: []string{"diagnostics.retention.days"},
		},
		{
			name:       "unknown log level",
			mutate:     func(cfg *Config) { cfg.Telemetry.Logging.Level = "trace" },
			wantFields: []string{"telemetry.logging.level"},
		},
		{
			name: "bad redact pattern",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "broken", Pattern: "(["}}
			},
			wantFields: []string{"telemetry.logging.redact_patterns[0].pattern"},
		},
		{
			name:       "metrics path without slash",
			mutate:     func(cfg *Config) { cfg.Telemetry.Metrics.Path = "metrics" },
			wantFields: []string{"telemetry.metrics.path"},
		},
		{
			name:       "tracing without endpoint",
			mutate:     func(cfg *Config) { cfg.Telemetry.Tracing.Enabled = true },
			wantFields: []string{"telemetry.tracing.endpoint"},
		},
		{
			name:       "sample ratio above one",
			mutate:     func(cfg *Config) { cfg.Telemetry.Tracing.SampleRatio = 1.5 },
			wantFields: []string{"telemetry.tracing.sample_ratio"},
		},
		{
			name:       "shared health paths",
			mutate:     func(cfg *Config) { cfg.Telemetry.Health.ReadinessPath = cfg.Telemetry.Health.LivenessPath },
			wantFields: []string{"telemetry.health.readiness_path"},
		},
		{
			name:       "listen address without port",
			mutate:     func(cfg *Config) { cfg.Server.ListenAddress = "localhost" },
			wantFields: []string{"server.listen_address"},
		},
		{
			name: "several problems at once",
			mutate: func(cfg *Config) {
				cfg.Diagnostics.Backend = "postgres"
				cfg.Telemetry.Logging.Format = "xml"
			},
			wantFields: []string{"diagnostics.backend", "telemetry.logging.format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errorsIsInvalid(err))

			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			var fields []string
			for _, fe := range verr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "configuration validation failed", ValidationError{}.Error())

	one := ValidationError{Errors: []FieldError{{Field: "forms.path", Message: "is required"}}}
	assert.Equal(t, "configuration validation failed: forms.path: is required", one.Error())

	two := ValidationError{Errors: []FieldError{
		{Field: "forms.path", Message: "is required"},
		{Field: "engine.max_depth", Message: "must be at least 1"},
	}}
	assert.Contains(t, two.Error(), "with 2 errors")
	assert.Contains(t, two.Error(), "  - engine.max_depth: must be at least 1")
}
