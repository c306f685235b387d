package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/formgate/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "engine",
		DurationBuckets: []float64{0.001, 0.01, 0.1},
	}
}

func TestNewCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	c := NewCollector(cfg, nil)

	require.NotNil(t, c.Registry())
	assert.Equal(t, config.DefaultMetricsNamespace, c.config.Namespace)
	assert.Equal(t, config.DefaultMetricsSubsystem, c.config.Subsystem)
	assert.Empty(t, cfg.Namespace, "caller's config is not mutated")

	c.RecordEvaluation("signup", "complete", "valid", time.Millisecond)
	count, err := testutil.GatherAndCount(c.Registry(), "formgate_engine_evaluations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollector_Recording(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	c.RecordEvaluation("signup", "complete", "invalid", 2*time.Millisecond)
	c.RecordEvaluation("signup", "complete", "invalid", 3*time.Millisecond)
	c.RecordEvaluation("signup", "partial", "valid", time.Millisecond)
	c.RecordValidationError("signup", "required")
	c.RecordValidationError("signup", "required")
	c.RecordValidationError("signup", "invalid_email")
	c.RecordDiagnostic("missing_reference")
	c.SetFormsLoaded(3)
	c.RecordReload("success")
	c.RecordReload("failure")
	c.RecordReload("failure")

	ev := c.evaluation
	assert.Equal(t, 2.0, testutil.ToFloat64(ev.evaluationsTotal.WithLabelValues("signup", "complete", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ev.evaluationsTotal.WithLabelValues("signup", "partial", "valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(ev.validationErrors.WithLabelValues("signup", "required")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ev.validationErrors.WithLabelValues("signup", "invalid_email")))
	assert.Equal(t, 2, testutil.CollectAndCount(ev.evaluationDuration))

	fm := c.forms
	assert.Equal(t, 1.0, testutil.ToFloat64(fm.diagnostics.WithLabelValues("missing_reference")))
	assert.Equal(t, 3.0, testutil.ToFloat64(fm.loaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(fm.reloads.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(fm.reloads.WithLabelValues("failure")))
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, nil)

	c.RecordEvaluation("signup", "complete", "valid", time.Millisecond)
	c.RecordValidationError("signup", "required")
	c.RecordDiagnostic("depth_exceeded")
	c.SetFormsLoaded(2)
	c.RecordReload("success")

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if g := m.GetGauge(); g != nil {
				assert.Zero(t, g.GetValue(), mf.GetName())
			}
		}
	}
	assert.Zero(t, testutil.CollectAndCount(c.evaluation.evaluationsTotal))

	var nilCollector *Collector
	assert.NotPanics(t, func() { nilCollector.RecordEvaluation("a", "partial", "valid", 0) })
}

func TestCollector_FormCardinality(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.formLimiter = NewCardinalityLimiter(2)

	for i := 0; i < 5; i++ {
		c.RecordEvaluation(fmt.Sprintf("form-%d", i), "partial", "valid", time.Millisecond)
	}

	assert.Equal(t, 3, testutil.CollectAndCount(c.evaluation.evaluationsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.evaluation.evaluationsTotal.WithLabelValues(OtherForm, "partial", "valid")))
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)
	assert.True(t, cl.Allow("a"))
	assert.True(t, cl.Allow("b"))
	assert.True(t, cl.Allow("a"))
	assert.False(t, cl.Allow("c"))
	assert.Equal(t, 2, cl.Count())
}

func TestHandler(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.RecordEvaluation("signup", "complete", "valid", time.Millisecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `test_engine_evaluations_total{form="signup",mode="complete",outcome="valid"} 1`))
}
