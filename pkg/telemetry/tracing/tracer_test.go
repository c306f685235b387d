package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/formgate/pkg/config"
)

func newTestTracer(t *testing.T, sampler string, ratio float64) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{
		Enabled:     true,
		Sampler:     sampler,
		SampleRatio: ratio,
		ServiceName: "formgate-test",
	}, "test", exporter)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(context.Background(), &config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.False(t, tracer.Enabled())

	_, span := tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil, "test")
	assert.Error(t, err)
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer
	_, span := tracer.Start(context.Background(), "noop")
	span.End()
	assert.False(t, tracer.Enabled())
	assert.NoError(t, tracer.ForceFlush(context.Background()))
	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestTracer_RecordsSpans(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways, 0)

	ctx, span := tracer.Start(context.Background(), SpanValidateSubmission)
	SetEvaluationAttributes(span, "signup", "abc123", "complete", 4)
	SetResultAttributes(span, 2)
	SetStatus(span, errors.New("2 fields invalid"))
	assert.NotEmpty(t, TraceID(ctx))
	span.End()

	require.NoError(t, tracer.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	got := spans[0]
	assert.Equal(t, SpanValidateSubmission, got.Name)
	assert.Equal(t, codes.Error, got.Status.Code)
	assert.Contains(t, got.Attributes, attribute.String(AttrFormID, "signup"))
	assert.Contains(t, got.Attributes, attribute.Int(AttrErrorCount, 2))
	assert.Contains(t, got.Attributes, attribute.Bool(AttrValid, false))
	assert.Len(t, got.Events, 1, "error recorded as event")
}

func TestTracer_NeverSampler(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerNever, 0)

	_, span := tracer.Start(context.Background(), SpanValidateFields)
	assert.False(t, span.IsRecording())
	span.End()

	require.NoError(t, tracer.ForceFlush(context.Background()))
	assert.Empty(t, exporter.GetSpans())
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.25, false},
		{"", 0.5, false},
		{SamplerRatio, 1.5, true},
		{"sometimes", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			s, err := createSampler(tt.strategy, tt.ratio)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestMiddleware_ContinuesRemoteTrace(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerNever, 0)

	var seenTraceID string
	handler := Middleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = TraceID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/forms/signup/validate", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	// The global propagator is a no-op in tests; extract up front.
	ctx := propagation.TraceContext{}.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", seenTraceID)

	require.NoError(t, tracer.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1, "sampled remote parent overrides the never sampler")
	assert.Equal(t, SpanHTTPRequest, spans[0].Name)
}
