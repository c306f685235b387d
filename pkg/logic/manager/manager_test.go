package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/formgate/pkg/config"
	"mercator-hq/formgate/pkg/logic/engine"
	"mercator-hq/formgate/pkg/telemetry/logging"
	"mercator-hq/formgate/pkg/telemetry/metrics"
	"mercator-hq/formgate/pkg/telemetry/tracing"
)

type diagnosticSink struct {
	mu    sync.Mutex
	items []engine.Diagnostic
}

func (s *diagnosticSink) Report(d engine.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

func (s *diagnosticSink) all() []engine.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.Diagnostic(nil), s.items...)
}

type testManager struct {
	*Manager
	dir    string
	prom   *prometheus.Registry
	spans  *tracetest.InMemoryExporter
	tracer *tracing.Tracer
	sink   *diagnosticSink
}

func newTestManager(t *testing.T, setup func(*config.Config)) *testManager {
	t.Helper()

	dir := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.Forms.Path = dir
	cfg.Forms.Debounce = 20 * time.Millisecond
	if setup != nil {
		setup(cfg)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test", Subsystem: "engine"}, registry)

	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(&config.TracingConfig{
		Enabled:     true,
		Sampler:     tracing.SamplerAlways,
		ServiceName: "formgate-test",
	}, "test", exporter)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	sink := &diagnosticSink{}
	m, err := NewManager(cfg, sink, logging.Discard(), WithMetrics(collector), WithTracer(tracer))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return &testManager{Manager: m, dir: dir, prom: registry, spans: exporter, tracer: tracer, sink: sink}
}

func (tm *testManager) spanNames(t *testing.T) []string {
	t.Helper()
	require.NoError(t, tm.tracer.ForceFlush(context.Background()))
	var names []string
	for _, s := range tm.spans.GetSpans() {
		names = append(names, s.Name)
	}
	return names
}

func seriesCount(t *testing.T, registry *prometheus.Registry, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(registry, name)
	require.NoError(t, err)
	return n
}

func TestNewManager_Errors(t *testing.T) {
	_, err := NewManager(nil, nil, nil)
	assert.Error(t, err)

	cfg := config.NewDefaultConfig()
	cfg.Engine.MaxDepth = -1
	_, err = NewManager(cfg, nil, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestManager_Load(t *testing.T) {
	tm := newTestManager(t, nil)
	writeFile(t, tm.dir, "feedback.yaml", feedbackForm)
	writeFile(t, tm.dir, "signup.yaml", signupForm)

	assert.ErrorIs(t, tm.Ready(context.Background()), ErrNotLoaded)

	require.NoError(t, tm.Load())
	assert.NoError(t, tm.Ready(context.Background()))

	forms := tm.Forms()
	require.Len(t, forms, 2)
	assert.Equal(t, "feedback", forms[0].ID)
	assert.Len(t, tm.Version(), 16)
	assert.Equal(t, 2, tm.Stats().FormCount)
	assert.Len(t, tm.Metadata(), 2)

	f, err := tm.Form("signup")
	require.NoError(t, err)
	assert.Equal(t, "signup", f.ID)

	_, err = tm.Form("missing")
	assert.ErrorIs(t, err, ErrFormNotFound)
	var notFound *FormNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.FormID)

	expected := `
# HELP test_engine_forms_loaded Number of form definitions currently served
# TYPE test_engine_forms_loaded gauge
test_engine_forms_loaded 2
`
	assert.NoError(t, testutil.GatherAndCompare(tm.prom, strings.NewReader(expected), "test_engine_forms_loaded"))
	assert.Contains(t, tm.spanNames(t), tracing.SpanLoadForms)
}

func TestManager_Load_Failure(t *testing.T) {
	tm := newTestManager(t, nil)
	writeFile(t, tm.dir, "feedback.yaml", feedbackForm)
	writeFile(t, tm.dir, "broken.yaml", "- id: [unclosed")

	err := tm.Load()
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Zero(t, tm.Stats().FormCount, "partial loads are not registered")

	ready := tm.Ready(context.Background())
	assert.ErrorIs(t, ready, ErrNotLoaded)

	_, last := tm.LastLoad()
	assert.Error(t, last)
}

func TestManager_Load_DuplicateID(t *testing.T) {
	tm := newTestManager(t, nil)
	writeFile(t, tm.dir, "feedback.yaml", feedbackForm)
	writeFile(t, tm.dir, "copy/feedback.yml", feedbackForm)

	var regErr *RegistryError
	require.ErrorAs(t, tm.Load(), &regErr)
	assert.Equal(t, "feedback", regErr.FormID)
}

func TestManager_Reload_KeepsLastGoodSet(t *testing.T) {
	tm := newTestManager(t, nil)
	writeFile(t, tm.dir, "feedback.yaml", feedbackForm)
	require.NoError(t, tm.Load())
	version := tm.Version()

	writeFile(t, tm.dir, "broken.yaml", "- id: [unclosed")
	require.Error(t, tm.Reload())

	_, err := tm.Form("feedback")
	assert.NoError(t, err)
	assert.Equal(t, version, tm.Version())
	assert.NoError(t, tm.Ready(context.Background()))

	require.NoError(t, os.Remove(filepath.Join(tm.dir, "broken.yaml")))
	writeFile(t, tm.dir, "signup.yaml", signupForm)
	require.NoError(t, tm.Reload())
	assert.NotEqual(t, version, tm.Version())
	assert.Equal(t, 2, tm.Stats().FormCount)

	assert.Equal(t, 2, seriesCount(t, tm.prom, "test_engine_form_reloads_total"))
}

func TestManager_ValidateSubmission(t *testing.T) {
	tm := newTestManager(t, nil)
	writeFile(t, tm.dir, "feedback.yaml", feedbackForm)
	require.NoError(t, tm.Load())
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		result, err := tm.ValidateSubmission(ctx, "feedback", engine.Submission{"rating": 5, "complaint": "ignored"})
		require.NoError(t, err)
		assert.True(t, result.Valid())
		assert.False(t, result.States["complaint"].Visible)
		assert.Equal(t, map[string]interface{}{"rating": 5}, result.Answers)
	})

	t.Run("conditionally required", func(t *testing.T) {
		result, err := tm.ValidateSubmission(ctx, "feedback", engine.Submission{"rating": 2})
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrSubmissionInvalid)

		var subErr *engine.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, []string{"complaint"}, subErr.Order)

		require.NotNil(t, result)
		assert.True(t, result.States["complaint"].Visible)
		assert.True(t, result.States["complaint"].Required)
		assert.Equal(t, engine.ReasonRequired, result.Fields["complaint"].Errors[0].Reason)
	})

	t.Run("unknown form", func(t *testing.T) {
		result, err := tm.ValidateSubmission(ctx, "missing", engine.Submission{})
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrFormNotFound)
	})

	assert.Equal(t, 3, seriesCount(t, tm.prom, "test_engine_evaluations_total"))
	assert.Equal(t, 1, seriesCount(t, tm.prom, "test_engine_validation_errors_total"))
	assert.Contains(t, tm.spanNames(t), tracing.SpanValidateSubmission)
}

func TestManager_ValidateFields(t *testing.T) {
	tm := newTestManager(t, nil)
	writeFile(t, tm.dir, "feedback.yaml", feedbackForm)
	require.NoError(t, tm.Load())

	result, err := tm.ValidateFields(context.Background(), "feedback", engine.Submission{}, "rating", "nope")
	require.NoError(t, err)

	assert.Equal(t, engine.ModePartial, result.Mode)
	require.Len(t, result.Fields, 1)
	assert.False(t, result.Fields["rating"].Valid())
	assert.Len(t, result.States, 2)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, engine.DiagnosticUnknownField, result.Diagnostics[0].Kind)
	require.Len(t, tm.sink.all(), 1)
	assert.Equal(t, "nope", tm.sink.all()[0].FieldID)
	assert.Equal(t, 1, seriesCount(t, tm.prom, "test_engine_diagnostics_total"))

	require.NoError(t, tm.tracer.ForceFlush(context.Background()))
	var found bool
	for _, s := range tm.spans.GetSpans() {
		if s.Name != tracing.SpanValidateFields {
			continue
		}
		found = true
		attrs := map[string]interface{}{}
		for _, a := range s.Attributes {
			attrs[string(a.Key)] = a.Value.AsInterface()
		}
		assert.Equal(t, "feedback", attrs[tracing.AttrFormID])
		assert.Equal(t, "partial", attrs[tracing.AttrMode])
		assert.Equal(t, int64(2), attrs[tracing.AttrFieldCount])
		assert.Equal(t, int64(1), attrs[tracing.AttrErrorCount])
	}
	assert.True(t, found)
}

func TestManager_StaleReferenceDiagnostics(t *testing.T) {
	tm := newTestManager(t, nil)
	writeFile(t, tm.dir, "stale.yaml", staleForm)
	require.NoError(t, tm.Load())

	result, err := tm.ValidateSubmission(context.Background(), "stale", engine.Submission{})
	require.NoError(t, err)
	assert.True(t, result.States["note"].Visible, "unresolvable condition does not fire")

	diags := tm.sink.all()
	require.NotEmpty(t, diags)
	assert.Equal(t, engine.DiagnosticStaleReference, diags[0].Kind)
	assert.Equal(t, "ratng", diags[0].Reference)
}

func TestManager_Watch(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		tm := newTestManager(t, nil)
		assert.ErrorIs(t, tm.Watch(context.Background()), ErrWatchDisabled)
	})

	t.Run("hot reload", func(t *testing.T) {
		tm := newTestManager(t, func(cfg *config.Config) { cfg.Forms.Watch = true })
		writeFile(t, tm.dir, "feedback.yaml", feedbackForm)
		require.NoError(t, tm.Load())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- tm.Watch(ctx) }()
		time.Sleep(100 * time.Millisecond)

		writeFile(t, tm.dir, "signup.yaml", signupForm)
		assert.Eventually(t, func() bool {
			_, err := tm.Form("signup")
			return err == nil
		}, 5*time.Second, 10*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Watch did not return after cancel")
		}
	})
}

func TestManager_ErrorsAreTyped(t *testing.T) {
	tm := newTestManager(t, func(cfg *config.Config) {
		cfg.Forms.Path = filepath.Join(t.TempDir(), "missing")
	})

	err := tm.Load()
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
