package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/formgate/pkg/config"
)

// EvaluationMetrics tracks engine evaluations.
//
// Metrics:
//   - formgate_engine_evaluations_total{form,mode,outcome}
//   - formgate_engine_evaluation_duration_seconds{mode}
//   - formgate_engine_validation_errors_total{form,reason}
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	validationErrors   *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of form evaluations",
			},
			[]string{"form", "mode", "outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of form evaluations in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"mode"},
		),

		validationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_errors_total",
				Help:      "Total number of field validation errors by reason",
			},
			[]string{"form", "reason"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.validationErrors,
	)
	return em
}

// RecordEvaluation records one evaluation and its duration.
func (em *EvaluationMetrics) RecordEvaluation(form, mode, outcome string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(form, mode, outcome).Inc()
	em.evaluationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordValidationError records one field error.
func (em *EvaluationMetrics) RecordValidationError(form, reason string) {
	em.validationErrors.WithLabelValues(form, reason).Inc()
}
