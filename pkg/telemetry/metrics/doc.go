// Package metrics provides Prometheus metrics for formgate.
//
// # Metrics
//
// With the default namespace "formgate" and subsystem "engine":
//
//   - formgate_engine_evaluations_total{form,mode,outcome}
//   - formgate_engine_evaluation_duration_seconds{mode}
//   - formgate_engine_validation_errors_total{form,reason}
//   - formgate_engine_diagnostics_total{kind}
//   - formgate_engine_forms_loaded
//   - formgate_engine_form_reloads_total{status}
//
// Form ids are label values, so the collector caps them at DefaultMaxForms and
// folds the rest into "other".
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordEvaluation("signup", "complete", "invalid", elapsed)
//	http.Handle("/metrics", collector.Handler())
package metrics
