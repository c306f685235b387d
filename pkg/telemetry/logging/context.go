package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// FormIDKey is the context key for the form being evaluated.
	FormIDKey contextKey = "form_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithFormID adds a form id to the context.
func WithFormID(ctx context.Context, formID string) context.Context {
	return context.WithValue(ctx, FormIDKey, formID)
}

// GetFormID retrieves the form id from the context.
func GetFormID(ctx context.Context) string {
	if formID, ok := ctx.Value(FormIDKey).(string); ok {
		return formID
	}
	return ""
}

// contextAttrs extracts request, form and trace identifiers. Trace and span IDs
// come from the active OpenTelemetry span.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if requestID := GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if formID := GetFormID(ctx); formID != "" {
		attrs = append(attrs, slog.String("form_id", formID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return attrs
}
