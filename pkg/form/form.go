package form

import (
	"errors"
	"path/filepath"
	"strings"

	"mercator-hq/formgate/pkg/form/ast"
	formErrors "mercator-hq/formgate/pkg/form/errors"
	"mercator-hq/formgate/pkg/form/parser"
	"mercator-hq/formgate/pkg/form/validator"
)

// Loader parses and validates form documents with shared limits.
type Loader struct {
	parser    *parser.Parser
	validator *validator.Validator
}

// NewLoader creates a loader with default limits.
func NewLoader() *Loader {
	return &Loader{
		parser:    parser.NewParser(),
		validator: validator.NewValidator(),
	}
}

// WithMaxFileSize sets the maximum document size in bytes.
func (l *Loader) WithMaxFileSize(size int64) *Loader {
	l.parser.WithMaxFileSize(size)
	return l
}

// WithMaxDepth sets the condition nesting ceiling for parsing and validation.
func (l *Loader) WithMaxDepth(depth int) *Loader {
	l.parser.WithMaxDepth(depth)
	l.validator.WithMaxDepth(depth)
	return l
}

// WithStrict promotes validation warnings to errors.
func (l *Loader) WithStrict(strict bool) *Loader {
	l.validator.WithStrict(strict)
	return l
}

// Load parses and validates the document at path. Validation warnings are dropped;
// use Check to see them.
func (l *Loader) Load(path string) (*ast.Form, error) {
	form, problems := l.Check(path)
	if err := problems.ToError(); err != nil {
		return nil, err
	}
	return form, nil
}

// LoadBytes parses and validates an in-memory document. name identifies the document
// in error locations and provides the form id when the document has none.
func (l *Loader) LoadBytes(data []byte, name string) (*ast.Form, error) {
	form, problems := l.CheckBytes(data, name)
	if err := problems.ToError(); err != nil {
		return nil, err
	}
	return form, nil
}

// Check parses and validates the document at path and returns every problem found.
// The form is nil when parsing failed.
func (l *Loader) Check(path string) (*ast.Form, *formErrors.ErrorList) {
	form, err := l.parser.Parse(path)
	return l.check(form, err, path)
}

// CheckBytes is Check for an in-memory document.
func (l *Loader) CheckBytes(data []byte, name string) (*ast.Form, *formErrors.ErrorList) {
	form, err := l.parser.ParseBytes(data, name)
	return l.check(form, err, name)
}

func (l *Loader) check(form *ast.Form, err error, name string) (*ast.Form, *formErrors.ErrorList) {
	if err != nil {
		return nil, asErrorList(err)
	}
	if form.ID == "" {
		form.ID = IDFromPath(name)
	}
	return form, l.validator.Check(form)
}

// IDFromPath derives a form id from a file name: "forms/signup.yaml" becomes "signup".
func IDFromPath(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load parses and validates a form document with default limits.
func Load(path string) (*ast.Form, error) {
	return NewLoader().Load(path)
}

// LoadBytes parses and validates an in-memory form document with default limits.
func LoadBytes(data []byte, name string) (*ast.Form, error) {
	return NewLoader().LoadBytes(data, name)
}

func asErrorList(err error) *formErrors.ErrorList {
	var list *formErrors.ErrorList
	if errors.As(err, &list) {
		return list
	}

	list = formErrors.NewErrorList()
	var single *formErrors.Error
	if errors.As(err, &single) {
		list.Add(single)
		return list
	}
	list.Add(&formErrors.Error{Type: formErrors.ErrorTypeIO, Message: err.Error()})
	return list
}
