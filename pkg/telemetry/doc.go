// Package telemetry groups formgate's observability packages.
//
//   - logging: slog loggers with context fields and PII redaction
//   - metrics: Prometheus counters and histograms for evaluations and reloads
//   - tracing: OpenTelemetry spans exported over OTLP/gRPC
//   - health: liveness and readiness endpoints
//
// Each package is configured from the matching section of config.TelemetryConfig.
// Submitted form values are treated as personal data: they are redacted from
// logs and never attached to spans or metric labels.
package telemetry
