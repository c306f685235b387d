package validator

import (
	"fmt"
	"sort"

	"mercator-hq/formgate/pkg/form/ast"
	formErrors "mercator-hq/formgate/pkg/form/errors"
	"mercator-hq/formgate/pkg/logic/engine"
)

// SemanticValidator validates semantic correctness of forms.
// It checks operators, field references and comparison values of condition leaves.
type SemanticValidator struct {
	form   *ast.Form
	errors *formErrors.ErrorList
}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{
		errors: formErrors.NewErrorList(),
	}
}

// Check performs semantic validation and returns every problem found.
//
// Unknown operators are errors. References to missing or retyped fields, operators the
// referenced type does not support and self-references are warnings: the engine
// evaluates such leaves as false and reports them at runtime.
func (v *SemanticValidator) Check(form *ast.Form) *formErrors.ErrorList {
	v.form = form
	v.errors = formErrors.NewErrorList()
	if form == nil {
		return v.errors
	}

	for _, field := range form.Fields {
		if field.Logic == nil || field.Logic.Conditions == nil {
			continue
		}
		ast.Walk(field.Logic.Conditions, func(node *ast.ConditionNode, _ int) bool {
			if node.IsLeaf() {
				v.validateLeaf(field, node, locationOr(node.Location, field.Logic.Location))
			}
			return true
		})
	}

	return v.errors
}

func (v *SemanticValidator) validateLeaf(owner *ast.Field, leaf *ast.ConditionNode, loc ast.Location) {
	if !leaf.Operator.IsKnown() {
		v.errors.AddErrorWithSuggestion(formErrors.ErrorTypeSemantic, owner.ID,
			fmt.Sprintf("Unknown operator %q", leaf.Operator), loc,
			formErrors.SuggestName(string(leaf.Operator), operatorNames(ast.Operators())))
		return
	}

	if leaf.Field.ID == owner.ID {
		v.errors.AddWarning(formErrors.ErrorTypeSemantic, owner.ID,
			"Condition references its own field", loc,
			"Conditions are evaluated against submitted data, so the field gates itself")
	}

	ref, ok := v.form.Field(leaf.Field.ID)
	if !ok {
		v.errors.AddWarning(formErrors.ErrorTypeSemantic, owner.ID,
			fmt.Sprintf("Condition references unknown field %q", leaf.Field.ID), loc,
			formErrors.SuggestFieldID(leaf.Field.ID, v.form.FieldIDs()))
		return
	}
	if leaf.Field.Type != "" && leaf.Field.Type != ref.Type {
		v.errors.AddWarning(formErrors.ErrorTypeSemantic, owner.ID,
			fmt.Sprintf("Condition expects %q to be a %s field but it is %s", ref.ID, leaf.Field.Type, ref.Type), loc,
			fmt.Sprintf("Update property_meta.type to %q", ref.Type))
		return
	}

	if !engine.Supports(ref.Type, leaf.Operator) {
		v.errors.AddWarning(formErrors.ErrorTypeSemantic, owner.ID,
			fmt.Sprintf("Operator %q does not apply to %s field %q", leaf.Operator, ref.Type, ref.ID), loc,
			formErrors.SuggestOperators(string(ref.Type), operatorNames(engine.OperatorsFor(ref.Type))))
		return
	}

	v.validateValue(owner, ref, leaf, loc)
}

// validateValue warns when the comparison value cannot match the referenced shape.
func (v *SemanticValidator) validateValue(owner, ref *ast.Field, leaf *ast.ConditionNode, loc ast.Location) {
	switch leaf.Operator {
	case ast.OperatorIsEmpty, ast.OperatorIsNotEmpty:
		return
	}

	if leaf.Value == nil {
		v.errors.AddWarning(formErrors.ErrorTypeSemantic, owner.ID,
			fmt.Sprintf("Condition on %q has no comparison value", ref.ID), loc, "")
		return
	}

	if ref.Type == ast.FieldTypeMatrix {
		switch leaf.Value.(type) {
		case map[string]interface{}, map[interface{}]interface{}, map[string]string:
		default:
			v.errors.AddWarning(formErrors.ErrorTypeSemantic, owner.ID,
				fmt.Sprintf("Condition on matrix field %q needs a row to column mapping", ref.ID), loc,
				"Use a mapping such as {row: column}")
			return
		}
		if m, ok := leaf.Value.(map[string]interface{}); ok && len(ref.Config.Rows) > 0 {
			rows := make([]string, 0, len(m))
			for row := range m {
				rows = append(rows, row)
			}
			sort.Strings(rows)
			for _, row := range rows {
				if !ref.Config.HasRow(row) {
					v.errors.AddWarning(formErrors.ErrorTypeSemantic, owner.ID,
						fmt.Sprintf("Condition references unknown row %q of matrix field %q", row, ref.ID), loc,
						formErrors.SuggestName(row, ref.Config.Rows))
				}
			}
		}
	}
}

func operatorNames(ops []ast.Operator) []string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return names
}
