package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrNilForm indicates evaluation was requested without a form definition.
	ErrNilForm = errors.New("form definition is nil")

	// ErrSubmissionInvalid is matched by every SubmissionError.
	ErrSubmissionInvalid = errors.New("submission failed validation")
)

// SubmissionError aggregates every field-level failure of a complete evaluation.
// It marshals to the {"message", "errors"} body used for 422 responses.
type SubmissionError struct {
	FormID string
	// Fields maps field id to its ordered error messages.
	Fields map[string][]string
	// Order lists the failing field ids in document order.
	Order []string
}

// Error returns the error message.
func (e *SubmissionError) Error() string {
	if len(e.Order) == 0 {
		return ErrSubmissionInvalid.Error()
	}
	first := e.Fields[e.Order[0]]
	msg := first[0]
	if extra := e.count() - 1; extra > 0 {
		msg = fmt.Sprintf("%s (and %d more error(s))", msg, extra)
	}
	if e.FormID != "" {
		return fmt.Sprintf("form %s: %s", e.FormID, msg)
	}
	return msg
}

// Is matches ErrSubmissionInvalid.
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionInvalid
}

// FieldIDs returns the failing field ids in document order.
func (e *SubmissionError) FieldIDs() []string {
	return append([]string(nil), e.Order...)
}

// Summary lists every failure, one field per line.
func (e *SubmissionError) Summary() string {
	var sb strings.Builder
	for _, id := range e.Order {
		fmt.Fprintf(&sb, "%s: %s\n", id, strings.Join(e.Fields[id], " "))
	}
	return sb.String()
}

// MarshalJSON renders the error as a validation response body.
func (e *SubmissionError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}{
		Message: e.Error(),
		Errors:  e.Fields,
	})
}

func (e *SubmissionError) count() int {
	n := 0
	for _, msgs := range e.Fields {
		n += len(msgs)
	}
	return n
}
