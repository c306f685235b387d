package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/formgate/pkg/config"
)

// FormMetrics tracks the served form set and engine diagnostics.
//
// Metrics:
//   - formgate_engine_forms_loaded
//   - formgate_engine_form_reloads_total{status}
//   - formgate_engine_diagnostics_total{kind}
type FormMetrics struct {
	loaded      prometheus.Gauge
	reloads     *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
}

// NewFormMetrics creates and registers form metrics.
func NewFormMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FormMetrics {
	fm := &FormMetrics{
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "forms_loaded",
			Help:      "Number of form definitions currently served",
		}),

		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "form_reloads_total",
				Help:      "Total number of form reloads by status",
			},
			[]string{"status"},
		),

		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "diagnostics_total",
				Help:      "Total number of evaluation diagnostics by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(fm.loaded, fm.reloads, fm.diagnostics)
	return fm
}

// SetLoaded sets the loaded form count.
func (fm *FormMetrics) SetLoaded(n int) {
	fm.loaded.Set(float64(n))
}

// RecordReload records a reload attempt.
func (fm *FormMetrics) RecordReload(status string) {
	fm.reloads.WithLabelValues(status).Inc()
}

// RecordDiagnostic records one diagnostic.
func (fm *FormMetrics) RecordDiagnostic(kind string) {
	fm.diagnostics.WithLabelValues(kind).Inc()
}
