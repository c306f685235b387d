package parser

import (
	"fmt"
	"os"

	"mercator-hq/formgate/pkg/form/ast"
	formErrors "mercator-hq/formgate/pkg/form/errors"
)

const (
	// DefaultMaxFileSize bounds a single form document.
	DefaultMaxFileSize = 5 * 1024 * 1024
	// DefaultMaxDepth bounds condition nesting.
	DefaultMaxDepth = 10
)

// Parser reads form documents (YAML or JSON) into ASTs.
type Parser struct {
	maxFileSize int64
	maxDepth    int
}

// NewParser creates a parser with default limits.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: DefaultMaxFileSize,
		maxDepth:    DefaultMaxDepth,
	}
}

// WithMaxFileSize sets the maximum document size in bytes.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	if size > 0 {
		p.maxFileSize = size
	}
	return p
}

// WithMaxDepth sets the maximum condition nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	if depth > 0 {
		p.maxDepth = depth
	}
	return p
}

// MaxDepth returns the configured nesting limit.
func (p *Parser) MaxDepth() int {
	return p.maxDepth
}

// Parse reads and parses the form document at path.
func (p *Parser) Parse(path string) (*ast.Form, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &formErrors.Error{
			Type:     formErrors.ErrorTypeIO,
			Severity: formErrors.SeverityError,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}
	if info.Size() > p.maxFileSize {
		return nil, p.sizeError(info.Size(), path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &formErrors.Error{
			Type:     formErrors.ErrorTypeIO,
			Severity: formErrors.SeverityError,
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses a form document held in memory. sourcePath is used only for
// error locations.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Form, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, p.sizeError(int64(len(data)), sourcePath)
	}

	root, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &formErrors.Error{
			Type:       formErrors.ErrorTypeSyntax,
			Severity:   formErrors.SeverityError,
			Message:    fmt.Sprintf("Parsing failed: %v", err),
			Location:   ast.Location{File: sourcePath, Line: 1, Column: 1},
			Suggestion: "Check YAML/JSON syntax (indentation, colons, quotes, brackets)",
		}
	}

	return newBuilder(sourcePath, p.maxDepth).buildForm(root)
}

func (p *Parser) sizeError(size int64, path string) error {
	return &formErrors.Error{
		Type:     formErrors.ErrorTypeIO,
		Severity: formErrors.SeverityError,
		Message:  fmt.Sprintf("Document size %d exceeds maximum %d bytes", size, p.maxFileSize),
		Location: ast.Location{File: path},
	}
}
