// Package tracing wires OpenTelemetry tracing for formgate.
//
// Spans are exported over OTLP/gRPC. Sampling is "always", "never" or "ratio"
// (trace ID based), always wrapped in a parent-based sampler. When tracing is
// disabled the Tracer is a no-op and costs next to nothing.
//
// # Usage
//
//	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanValidateSubmission)
//	defer span.End()
//
// Span attributes describe the form, the evaluation mode and the outcome.
// Submitted values are never recorded.
package tracing
