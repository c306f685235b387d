package validator

import (
	"fmt"

	"mercator-hq/formgate/pkg/form/ast"
	formErrors "mercator-hq/formgate/pkg/form/errors"
)

// StructuralValidator checks the shape of a form: ids, types, type configuration and
// the well-formedness of logic blocks.
type StructuralValidator struct {
	maxDepth int
	errors   *formErrors.ErrorList
}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator(maxDepth int) *StructuralValidator {
	return &StructuralValidator{
		maxDepth: maxDepth,
		errors:   formErrors.NewErrorList(),
	}
}

// Check performs structural validation and returns every problem found.
func (v *StructuralValidator) Check(form *ast.Form) *formErrors.ErrorList {
	v.errors = formErrors.NewErrorList()

	if form == nil {
		v.errors.AddError(formErrors.ErrorTypeStructural, "", "Form definition is empty", ast.Location{})
		return v.errors
	}

	if form.ID == "" {
		v.errors.AddErrorWithSuggestion(
			formErrors.ErrorTypeStructural,
			"",
			"Missing required key 'id' for form",
			form.Location,
			"Add 'id: my-form' or load the file by name",
		)
	}
	if len(form.Fields) == 0 {
		v.errors.AddWarning(formErrors.ErrorTypeStructural, "", "Form has no fields", form.Location, "")
	}

	seen := make(map[string]*ast.Field, len(form.Fields))
	for i, field := range form.Fields {
		if field.ID == "" {
			v.errors.AddError(formErrors.ErrorTypeStructural, "",
				fmt.Sprintf("Field at index %d is missing required key 'id'", i), field.Location)
		} else if first, dup := seen[field.ID]; dup {
			v.errors.AddErrorWithSuggestion(formErrors.ErrorTypeStructural, field.ID,
				fmt.Sprintf("Duplicate field id %q", field.ID), field.Location,
				fmt.Sprintf("First defined at %s", first.Location))
		} else {
			seen[field.ID] = field
		}

		v.validateType(field)
		v.validateConfig(field)
		v.validateLogic(field)
	}

	return v.errors
}

func (v *StructuralValidator) validateType(field *ast.Field) {
	if field.Type == "" {
		v.errors.AddErrorWithSuggestion(formErrors.ErrorTypeStructural, field.ID,
			"Missing required key 'type'", field.Location,
			formErrors.SuggestName("", fieldTypeNames()))
		return
	}
	if !field.Type.IsKnown() {
		v.errors.AddErrorWithSuggestion(formErrors.ErrorTypeStructural, field.ID,
			fmt.Sprintf("Unknown field type %q", field.Type), field.Location,
			formErrors.SuggestName(string(field.Type), fieldTypeNames()))
	}
}

// validateConfig checks that the type configuration is internally consistent.
func (v *StructuralValidator) validateConfig(field *ast.Field) {
	cfg := &field.Config
	fail := func(format string, args ...interface{}) {
		v.errors.AddError(formErrors.ErrorTypeStructural, field.ID, fmt.Sprintf(format, args...), field.Location)
	}
	warn := func(suggestion, format string, args ...interface{}) {
		v.errors.AddWarning(formErrors.ErrorTypeStructural, field.ID, fmt.Sprintf(format, args...), field.Location, suggestion)
	}

	switch field.Type {
	case ast.FieldTypeMatrix:
		mustHave := field.Required || cfg.RowsRequired
		for _, dim := range []struct {
			key    string
			values []string
		}{{"rows", cfg.Rows}, {"columns", cfg.Columns}} {
			if len(dim.values) == 0 {
				if mustHave {
					fail("Required matrix field has no %s", dim.key)
				} else {
					warn(fmt.Sprintf("Add a '%s' list", dim.key), "Matrix field has no %s", dim.key)
				}
			}
			if d := firstDuplicate(dim.values); d != "" {
				fail("Duplicate matrix %s entry %q", dim.key, d)
			}
		}

	case ast.FieldTypeSelect, ast.FieldTypeMultiSelect:
		if len(cfg.Options) == 0 && !cfg.AllowCreation {
			warn("Add 'options' or set 'allow_creation: true'", "Choice field has no options; any value is accepted")
		}
		if d := firstDuplicate(cfg.Options); d != "" {
			fail("Duplicate option %q", d)
		}

	case ast.FieldTypeNumber:
		if cfg.Min != nil && cfg.Max != nil && *cfg.Min > *cfg.Max {
			fail("min (%v) is greater than max (%v)", *cfg.Min, *cfg.Max)
		}

	case ast.FieldTypeText, ast.FieldTypeEmail, ast.FieldTypeURL:
		if cfg.MinLength != nil && *cfg.MinLength < 0 {
			fail("min_length cannot be negative")
		}
		if cfg.MaxLength != nil && *cfg.MaxLength < 0 {
			fail("max_length cannot be negative")
		}
		if cfg.MinLength != nil && cfg.MaxLength != nil && *cfg.MinLength > *cfg.MaxLength {
			fail("min_length (%d) is greater than max_length (%d)", *cfg.MinLength, *cfg.MaxLength)
		}

	case ast.FieldTypeRating:
		if cfg.RatingMax < 0 {
			fail("rating_max cannot be negative")
		}

	case ast.FieldTypeScale:
		if cfg.ScaleMin != nil && cfg.ScaleMax != nil && *cfg.ScaleMin > *cfg.ScaleMax {
			fail("scale_min (%v) is greater than scale_max (%v)", *cfg.ScaleMin, *cfg.ScaleMax)
		}

	case ast.FieldTypeFiles:
		if cfg.MaxFiles < 0 {
			fail("max_files cannot be negative")
		}
	}
}

func (v *StructuralValidator) validateLogic(field *ast.Field) {
	logic := field.Logic
	if logic == nil {
		return
	}

	if len(logic.Actions) == 0 {
		v.errors.AddErrorWithSuggestion(formErrors.ErrorTypeStructural, field.ID,
			"Logic block has no actions", logic.Location,
			formErrors.SuggestName("", actionNames()))
	}
	for _, action := range logic.Actions {
		if !action.IsKnown() {
			v.errors.AddErrorWithSuggestion(formErrors.ErrorTypeStructural, field.ID,
				fmt.Sprintf("Unknown action %q", action), logic.Location,
				formErrors.SuggestName(string(action), actionNames()))
		}
	}

	if logic.Conditions == nil {
		v.errors.AddWarning(formErrors.ErrorTypeStructural, field.ID,
			"Logic block has no conditions; its actions never apply", logic.Location, "")
		return
	}

	if ast.HasCycle(logic.Conditions) {
		v.errors.AddError(formErrors.ErrorTypeStructural, field.ID,
			"Condition tree contains a cycle", logic.Location)
		return
	}
	if depth := ast.Depth(logic.Conditions); depth > v.maxDepth {
		v.errors.AddError(formErrors.ErrorTypeStructural, field.ID,
			fmt.Sprintf("Condition nesting depth %d exceeds maximum depth of %d", depth, v.maxDepth),
			logic.Location)
	}
	if logic.Conditions.LeafCount() == 0 {
		v.errors.AddWarning(formErrors.ErrorTypeStructural, field.ID,
			"Condition tree has no leaves; its actions never apply", logic.Location, "")
	}

	ast.Walk(logic.Conditions, func(node *ast.ConditionNode, _ int) bool {
		switch node.Type {
		case ast.ConditionTypeGroup:
			if node.Combinator != ast.CombinatorAnd && node.Combinator != ast.CombinatorOr {
				v.errors.AddError(formErrors.ErrorTypeStructural, field.ID,
					fmt.Sprintf("Unknown operatorIdentifier %q, expected 'and' or 'or'", node.Combinator),
					locationOr(node.Location, logic.Location))
			}
		case ast.ConditionTypeLeaf:
			if node.Field.ID == "" {
				v.errors.AddError(formErrors.ErrorTypeStructural, field.ID,
					"Condition is missing property_meta.id", locationOr(node.Location, logic.Location))
			}
			if node.Operator == "" {
				v.errors.AddError(formErrors.ErrorTypeStructural, field.ID,
					"Condition is missing operator", locationOr(node.Location, logic.Location))
			}
		default:
			v.errors.AddError(formErrors.ErrorTypeStructural, field.ID,
				fmt.Sprintf("Unknown condition type %q", node.Type), locationOr(node.Location, logic.Location))
		}
		return true
	})
}

func fieldTypeNames() []string {
	types := ast.FieldTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

func actionNames() []string {
	actions := ast.ActionTypes()
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return names
}

func firstDuplicate(values []string) string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}

func locationOr(loc, fallback ast.Location) ast.Location {
	if loc.IsValid() {
		return loc
	}
	return fallback
}
