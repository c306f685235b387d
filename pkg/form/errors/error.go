package errors

import (
	"fmt"
	"strings"

	"mercator-hq/formgate/pkg/form/ast"
)

// ErrorType categorizes problems found while loading a form definition.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML/JSON syntax error
	ErrorTypeStructural ErrorType = "structural" // Missing or invalid keys, bad nesting
	ErrorTypeSemantic   ErrorType = "semantic"   // Unknown references, inapplicable operators
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Severity decides whether a problem makes the definition unusable.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error is a single load-time problem with its location and an optional fix.
type Error struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	FieldID    string // Owning field, when known
	Location   ast.Location
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	severity := e.Severity
	if severity == "" {
		severity = SeverityError
	}
	fmt.Fprintf(&sb, "%s[%s] %s\n", severity, e.Type, e.Message)

	if e.Location.IsValid() {
		fmt.Fprintf(&sb, "  --> %s\n", e.Location.String())
	}
	if e.FieldID != "" {
		fmt.Fprintf(&sb, "  field: %s\n", e.FieldID)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&sb, "  = suggestion: %s\n", e.Suggestion)
	}

	return sb.String()
}

// IsWarning reports whether the problem is advisory.
func (e *Error) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// ErrorList accumulates problems so a form author sees all of them at once.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates an empty list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends a problem. An empty severity is treated as an error.
func (el *ErrorList) Add(err *Error) {
	if err.Severity == "" {
		err.Severity = SeverityError
	}
	el.Errors = append(el.Errors, err)
}

// AddError records an error.
func (el *ErrorList) AddError(errType ErrorType, fieldID, message string, location ast.Location) {
	el.Add(&Error{
		Type:     errType,
		Severity: SeverityError,
		Message:  message,
		FieldID:  fieldID,
		Location: location,
	})
}

// AddErrorWithSuggestion records an error with a suggested fix.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, fieldID, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Severity:   SeverityError,
		Message:    message,
		FieldID:    fieldID,
		Location:   location,
		Suggestion: suggestion,
	})
}

// AddWarning records an advisory problem that does not block loading.
func (el *ErrorList) AddWarning(errType ErrorType, fieldID, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Severity:   SeverityWarning,
		Message:    message,
		FieldID:    fieldID,
		Location:   location,
		Suggestion: suggestion,
	})
}

// Merge appends every entry of other.
func (el *ErrorList) Merge(other *ErrorList) {
	if other == nil {
		return
	}
	el.Errors = append(el.Errors, other.Errors...)
}

// HasErrors returns true if at least one entry has error severity.
func (el *ErrorList) HasErrors() bool {
	for _, err := range el.Errors {
		if !err.IsWarning() {
			return true
		}
	}
	return false
}

// HasWarnings returns true if at least one entry is a warning.
func (el *ErrorList) HasWarnings() bool {
	return len(el.Warnings()) > 0
}

// Count returns the number of entries of any severity.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Warnings returns the advisory entries.
func (el *ErrorList) Warnings() []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.IsWarning() {
			result = append(result, err)
		}
	}
	return result
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if len(el.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d problem(s):\n\n", el.Count())

	for i, err := range el.Errors {
		fmt.Fprintf(&sb, "%d. ", i+1)
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil unless the list contains an error-severity entry.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all entries of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if an error-severity entry of the given type exists.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType && !err.IsWarning() {
			return true
		}
	}
	return false
}
