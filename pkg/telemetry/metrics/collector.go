package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/formgate/pkg/config"
)

// OtherForm replaces form ids once the cardinality limit is reached.
const OtherForm = "other"

// DefaultMaxForms bounds the number of distinct form labels.
const DefaultMaxForms = 1000

// Collector owns the formgate Prometheus metrics. All recording methods are
// no-ops when metrics are disabled, so callers never need to check.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	evaluation *EvaluationMetrics
	forms      *FormMetrics

	formLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering its metrics on registry. A nil
// registry gets a fresh one. Empty namespace, subsystem and buckets fall back
// to the configuration defaults.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	router.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry:    registry,
		formLimiter: NewCardinalityLimiter(DefaultMaxForms),
	}
	if cfg != nil {
		c.config = *cfg
	}
	if c.config.Namespace == "" {
		c.config.Namespace = config.DefaultMetricsNamespace
	}
	if c.config.Subsystem == "" {
		c.config.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(c.config.DurationBuckets) == 0 {
		c.config.DurationBuckets = config.DefaultDurationBuckets()
	}

	c.evaluation = NewEvaluationMetrics(&c.config, registry)
	c.forms = NewFormMetrics(&c.config, registry)
	return c
}

// Enabled reports whether recording methods have any effect.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordEvaluation records one engine evaluation.
//
// mode is "partial" or "complete"; outcome is "valid", "invalid" or "error".
func (c *Collector) RecordEvaluation(formID, mode, outcome string, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.evaluation.RecordEvaluation(c.formLabel(formID), mode, outcome, duration)
}

// RecordValidationError records one field error by reason code.
func (c *Collector) RecordValidationError(formID, reason string) {
	if !c.Enabled() {
		return
	}
	c.evaluation.RecordValidationError(c.formLabel(formID), reason)
}

// RecordDiagnostic records one engine diagnostic by kind.
func (c *Collector) RecordDiagnostic(kind string) {
	if !c.Enabled() {
		return
	}
	c.forms.RecordDiagnostic(kind)
}

// SetFormsLoaded sets the number of forms currently served.
func (c *Collector) SetFormsLoaded(n int) {
	if !c.Enabled() {
		return
	}
	c.forms.SetLoaded(n)
}

// RecordReload records a form reload with status "success" or "failure".
func (c *Collector) RecordReload(status string) {
	if !c.Enabled() {
		return
	}
	c.forms.RecordReload(status)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) formLabel(formID string) string {
	if c.formLimiter.Allow(formID) {
		return formID
	}
	return OtherForm
}

// CardinalityLimiter caps the number of distinct label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already tracked or still fits under the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
