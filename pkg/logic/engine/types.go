package engine

import (
	"mercator-hq/formgate/pkg/form/ast"
)

// Mode selects how much of the form is validated.
type Mode string

const (
	// ModePartial validates only the requested fields (live validation).
	ModePartial Mode = "partial"
	// ModeComplete validates every field (submission).
	ModeComplete Mode = "complete"
)

// FieldState is the resolved visibility and requiredness of a field.
type FieldState struct {
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
}

// ErrorMessage is a single validation failure.
type ErrorMessage struct {
	// Reason is a stable machine-readable code such as "required".
	Reason string `json:"reason"`
	// Message is the rendered human-readable text.
	Message string `json:"message"`
	// Params are the values substituted into the template.
	Params map[string]string `json:"params,omitempty"`
}

// FieldResult is the outcome for one validated field.
type FieldResult struct {
	Visible  bool           `json:"visible"`
	Required bool           `json:"required"`
	Errors   []ErrorMessage `json:"errors"`
}

// Valid reports whether the field has no errors.
func (r *FieldResult) Valid() bool {
	return len(r.Errors) == 0
}

// EvaluationResult is returned by every orchestrator call. It holds no references to
// the form or the submission it was computed from.
type EvaluationResult struct {
	FormID string `json:"form_id,omitempty"`
	Mode   Mode   `json:"mode"`

	// States holds the resolved state of every field in the form.
	States map[string]FieldState `json:"states"`

	// Fields holds validation results for the validated fields only.
	Fields map[string]*FieldResult `json:"fields"`

	// Answers holds the submitted values of visible fields (complete mode only).
	Answers map[string]interface{} `json:"answers,omitempty"`

	// Diagnostics lists operator-facing problems found while evaluating conditions,
	// in field order.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	order []string
}

// Valid reports whether no validated field has errors.
func (r *EvaluationResult) Valid() bool {
	for _, f := range r.Fields {
		if !f.Valid() {
			return false
		}
	}
	return true
}

// ErrorCount returns the total number of validation errors.
func (r *EvaluationResult) ErrorCount() int {
	n := 0
	for _, f := range r.Fields {
		n += len(f.Errors)
	}
	return n
}

// Errors maps each failing field id to its messages.
func (r *EvaluationResult) Errors() map[string][]string {
	out := make(map[string][]string)
	for id, f := range r.Fields {
		if f.Valid() {
			continue
		}
		msgs := make([]string, len(f.Errors))
		for i, e := range f.Errors {
			msgs[i] = e.Message
		}
		out[id] = msgs
	}
	return out
}

// Err returns a *SubmissionError when any validated field failed, otherwise nil.
func (r *EvaluationResult) Err() error {
	if r.Valid() {
		return nil
	}
	errs := r.Errors()
	se := &SubmissionError{FormID: r.FormID, Fields: errs}
	for _, id := range r.order {
		if _, ok := errs[id]; ok {
			se.Order = append(se.Order, id)
		}
	}
	return se
}

// DiagnosticKind classifies operator-facing evaluation problems.
type DiagnosticKind string

const (
	// DiagnosticStaleReference: a leaf points at a field that no longer exists or
	// whose type changed since the condition was authored.
	DiagnosticStaleReference DiagnosticKind = "stale_reference"
	// DiagnosticUnsupportedOperator: the comparison table has no entry for the
	// referenced field type and operator.
	DiagnosticUnsupportedOperator DiagnosticKind = "unsupported_operator"
	// DiagnosticDepthExceeded: evaluation hit the depth ceiling.
	DiagnosticDepthExceeded DiagnosticKind = "depth_exceeded"
	// DiagnosticUnknownField: partial validation named a field the form lacks.
	DiagnosticUnknownField DiagnosticKind = "unknown_field"
)

// Diagnostic is reported to operators, never to the person filling the form. It does
// not affect results beyond the affected leaf evaluating false.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	FormID    string         `json:"form_id,omitempty"`
	FieldID   string         `json:"field_id,omitempty"`
	Reference string         `json:"reference,omitempty"`
	Operator  ast.Operator   `json:"operator,omitempty"`
	Message   string         `json:"message"`
}

// Reporter receives diagnostics. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) {
	f(d)
}

type nopReporter struct{}

func (nopReporter) Report(Diagnostic) {}
