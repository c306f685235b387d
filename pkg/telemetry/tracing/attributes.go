package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanValidateFields     = "formgate.validate_fields"
	SpanValidateSubmission = "formgate.validate_submission"
	SpanLoadForms          = "formgate.load_forms"
	SpanHTTPRequest        = "formgate.http"
)

// Attribute keys. Submitted values are never attached to spans.
const (
	AttrFormID      = "formgate.form.id"
	AttrFormVersion = "formgate.form.version"
	AttrMode        = "formgate.evaluation.mode"
	AttrFieldCount  = "formgate.evaluation.fields"
	AttrErrorCount  = "formgate.evaluation.errors"
	AttrValid       = "formgate.evaluation.valid"
	AttrFormsLoaded = "formgate.forms.loaded"
	AttrFormsPath   = "formgate.forms.path"
)

// SetEvaluationAttributes describes an evaluation request on span.
func SetEvaluationAttributes(span trace.Span, formID, version, mode string, fields int) {
	span.SetAttributes(
		attribute.String(AttrFormID, formID),
		attribute.String(AttrFormVersion, version),
		attribute.String(AttrMode, mode),
		attribute.Int(AttrFieldCount, fields),
	)
}

// SetResultAttributes records the evaluation outcome on span.
func SetResultAttributes(span trace.Span, errorCount int) {
	span.SetAttributes(
		attribute.Int(AttrErrorCount, errorCount),
		attribute.Bool(AttrValid, errorCount == 0),
	)
}

// SetLoadAttributes records a form load on span.
func SetLoadAttributes(span trace.Span, path string, loaded int) {
	span.SetAttributes(
		attribute.String(AttrFormsPath, path),
		attribute.Int(AttrFormsLoaded, loaded),
	)
}
