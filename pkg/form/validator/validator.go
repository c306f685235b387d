package validator

import (
	"mercator-hq/formgate/pkg/form/ast"
	formErrors "mercator-hq/formgate/pkg/form/errors"
)

// DefaultMaxDepth bounds condition nesting when no limit is configured.
const DefaultMaxDepth = 10

// Validator is the main validator that orchestrates all validation passes.
// It runs structural and semantic validation in sequence.
type Validator struct {
	structural *StructuralValidator
	semantic   *SemanticValidator
	strict     bool
}

// NewValidator creates a new validator with all validation passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(DefaultMaxDepth),
		semantic:   NewSemanticValidator(),
	}
}

// WithMaxDepth sets the condition nesting ceiling.
func (v *Validator) WithMaxDepth(depth int) *Validator {
	if depth > 0 {
		v.structural.maxDepth = depth
	}
	return v
}

// WithStrict promotes warnings to errors.
func (v *Validator) WithStrict(strict bool) *Validator {
	v.strict = strict
	return v
}

// Check runs all passes and returns every problem found, warnings included.
func (v *Validator) Check(form *ast.Form) *formErrors.ErrorList {
	problems := formErrors.NewErrorList()
	problems.Merge(v.structural.Check(form))

	// Run semantic validation only if structural validation passed.
	// This prevents cascading errors
	if !problems.HasErrorType(formErrors.ErrorTypeStructural) {
		problems.Merge(v.semantic.Check(form))
	}

	if v.strict {
		for _, p := range problems.Errors {
			p.Severity = formErrors.SeverityError
		}
	}
	return problems
}

// Validate runs all validation passes on a form. It returns an *errors.ErrorList when
// at least one error-severity problem exists; warnings alone yield nil.
func (v *Validator) Validate(form *ast.Form) error {
	return v.Check(form).ToError()
}

// ValidateStructural runs only structural validation.
func (v *Validator) ValidateStructural(form *ast.Form) error {
	return v.structural.Check(form).ToError()
}

// ValidateSemantic runs only semantic validation.
func (v *Validator) ValidateSemantic(form *ast.Form) error {
	return v.semantic.Check(form).ToError()
}
