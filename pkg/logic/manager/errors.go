package manager

import (
	"errors"
	"fmt"
	"strings"

	formErrors "mercator-hq/formgate/pkg/form/errors"
)

var (
	// ErrFormNotFound is matched by every FormNotFoundError.
	ErrFormNotFound = errors.New("form not found")

	// ErrNotLoaded indicates forms were requested before a successful load.
	ErrNotLoaded = errors.New("forms have not been loaded")

	// ErrWatchDisabled indicates Watch was called with forms.watch disabled.
	ErrWatchDisabled = errors.New("form watching is not enabled in configuration")
)

// LoadError represents a file system problem while reading a form document,
// such as a missing file, a size limit violation or invalid UTF-8.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load form file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load form file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError reports a form document that failed parsing or validation. Problems
// holds every located problem found in the file.
type ParseError struct {
	FilePath string
	Problems *formErrors.ErrorList
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Problems == nil || len(e.Problems.Errors) == 0 {
		return fmt.Sprintf("invalid form file %q", e.FilePath)
	}

	first := e.Problems.Errors[0]
	for _, p := range e.Problems.Errors {
		if !p.IsWarning() {
			first = p
			break
		}
	}
	msg := first.Message
	if first.Location.IsValid() {
		msg = fmt.Sprintf("%s: %s", first.Location.String(), first.Message)
	}
	if n := e.Problems.Count(); n > 1 {
		return fmt.Sprintf("invalid form file %q: %s (and %d more)", e.FilePath, msg, n-1)
	}
	return fmt.Sprintf("invalid form file %q: %s", e.FilePath, msg)
}

// Unwrap returns the problem list.
func (e *ParseError) Unwrap() error {
	if e.Problems == nil {
		return nil
	}
	return e.Problems
}

// RegistryError represents a failed registry operation, such as two files
// declaring the same form id.
type RegistryError struct {
	FormID    string
	Operation string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.FormID != "" {
		return fmt.Sprintf("registry error for form %q during %s: %s", e.FormID, e.Operation, e.Message)
	}
	return fmt.Sprintf("registry error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *RegistryError) Unwrap() error {
	return e.Cause
}

// FormNotFoundError indicates a lookup for a form id that is not registered.
type FormNotFoundError struct {
	FormID string
}

// Error implements the error interface.
func (e *FormNotFoundError) Error() string {
	return fmt.Sprintf("form %q not found", e.FormID)
}

// Is reports whether target is ErrFormNotFound.
func (e *FormNotFoundError) Is(target error) bool {
	return target == ErrFormNotFound
}

// ErrorList contains the errors of a multi-file load.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors occurred:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %v\n", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the wrapped errors for errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	return e.Errors
}

// Add appends a non-nil error.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors reports whether the list is non-empty.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil for an empty list.
func (e *ErrorList) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
