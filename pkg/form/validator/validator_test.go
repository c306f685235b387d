package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/formgate/pkg/form/ast"
	formErrors "mercator-hq/formgate/pkg/form/errors"
)

func matrixField(id string) *ast.Field {
	return &ast.Field{
		ID:   id,
		Type: ast.FieldTypeMatrix,
		Config: ast.TypeConfig{
			Rows:    []string{"r1", "r2"},
			Columns: []string{"a", "b"},
		},
	}
}

func requireWhen(leaf *ast.ConditionNode) *ast.Logic {
	return &ast.Logic{Conditions: ast.And(leaf), Actions: []ast.ActionType{ast.ActionRequire}}
}

func messages(list *formErrors.ErrorList, severity formErrors.Severity) []string {
	var out []string
	for _, e := range list.Errors {
		if e.Severity == severity {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestStructuralValidator(t *testing.T) {
	tests := []struct {
		name        string
		form        *ast.Form
		wantError   string
		wantWarning string
	}{
		{
			name: "valid form",
			form: ast.NewForm("ok",
				matrixField("grid"),
				&ast.Field{ID: "note", Type: ast.FieldTypeText, Logic: requireWhen(
					ast.Leaf(ast.FieldRef{ID: "grid", Type: ast.FieldTypeMatrix}, ast.OperatorEquals, map[string]interface{}{"r1": "a"}),
				)},
			),
		},
		{
			name:      "missing form id",
			form:      ast.NewForm("", &ast.Field{ID: "a", Type: ast.FieldTypeText}),
			wantError: "Missing required key 'id' for form",
		},
		{
			name:        "no fields",
			form:        ast.NewForm("empty"),
			wantWarning: "Form has no fields",
		},
		{
			name:      "missing field id",
			form:      ast.NewForm("f", &ast.Field{Type: ast.FieldTypeText}),
			wantError: "Field at index 0 is missing required key 'id'",
		},
		{
			name: "duplicate field id",
			form: ast.NewForm("f",
				&ast.Field{ID: "a", Type: ast.FieldTypeText},
				&ast.Field{ID: "a", Type: ast.FieldTypeNumber},
			),
			wantError: `Duplicate field id "a"`,
		},
		{
			name:      "missing type",
			form:      ast.NewForm("f", &ast.Field{ID: "a"}),
			wantError: "Missing required key 'type'",
		},
		{
			name:      "unknown type",
			form:      ast.NewForm("f", &ast.Field{ID: "a", Type: "signature"}),
			wantError: `Unknown field type "signature"`,
		},
		{
			name: "required matrix without rows",
			form: ast.NewForm("f", &ast.Field{ID: "m", Type: ast.FieldTypeMatrix, Required: true,
				Config: ast.TypeConfig{Columns: []string{"a"}}}),
			wantError: "Required matrix field has no rows",
		},
		{
			name: "optional matrix without columns",
			form: ast.NewForm("f", &ast.Field{ID: "m", Type: ast.FieldTypeMatrix,
				Config: ast.TypeConfig{Rows: []string{"r"}}}),
			wantWarning: "Matrix field has no columns",
		},
		{
			name: "duplicate matrix row",
			form: ast.NewForm("f", &ast.Field{ID: "m", Type: ast.FieldTypeMatrix,
				Config: ast.TypeConfig{Rows: []string{"r", "r"}, Columns: []string{"a"}}}),
			wantError: `Duplicate matrix rows entry "r"`,
		},
		{
			name:        "select without options",
			form:        ast.NewForm("f", &ast.Field{ID: "s", Type: ast.FieldTypeSelect}),
			wantWarning: "Choice field has no options; any value is accepted",
		},
		{
			name: "number min above max",
			form: ast.NewForm("f", &ast.Field{ID: "n", Type: ast.FieldTypeNumber,
				Config: ast.TypeConfig{Min: floatPtr(5), Max: floatPtr(1)}}),
			wantError: "min (5) is greater than max (1)",
		},
		{
			name: "logic without actions",
			form: ast.NewForm("f", matrixField("grid"), &ast.Field{ID: "n", Type: ast.FieldTypeText,
				Logic: &ast.Logic{Conditions: ast.And(ast.Leaf(ast.FieldRef{ID: "grid"}, ast.OperatorIsEmpty, nil))}}),
			wantError: "Logic block has no actions",
		},
		{
			name: "unknown action",
			form: ast.NewForm("f", matrixField("grid"), &ast.Field{ID: "n", Type: ast.FieldTypeText,
				Logic: &ast.Logic{
					Conditions: ast.And(ast.Leaf(ast.FieldRef{ID: "grid"}, ast.OperatorIsEmpty, nil)),
					Actions:    []ast.ActionType{"shwo"},
				}}),
			wantError: `Unknown action "shwo"`,
		},
		{
			name: "logic without leaves",
			form: ast.NewForm("f", &ast.Field{ID: "n", Type: ast.FieldTypeText,
				Logic: &ast.Logic{Conditions: ast.And(ast.Or()), Actions: []ast.ActionType{ast.ActionHide}}}),
			wantWarning: "Condition tree has no leaves; its actions never apply",
		},
		{
			name: "unknown combinator",
			form: ast.NewForm("f", matrixField("grid"), &ast.Field{ID: "n", Type: ast.FieldTypeText,
				Logic: requireWhen(ast.Group("xor", ast.Leaf(ast.FieldRef{ID: "grid"}, ast.OperatorIsEmpty, nil)))}),
			wantError: `Unknown operatorIdentifier "xor", expected 'and' or 'or'`,
		},
		{
			name: "leaf without reference",
			form: ast.NewForm("f", &ast.Field{ID: "n", Type: ast.FieldTypeText,
				Logic: requireWhen(ast.Leaf(ast.FieldRef{}, ast.OperatorIsEmpty, nil))}),
			wantError: "Condition is missing property_meta.id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := NewStructuralValidator(DefaultMaxDepth).Check(tt.form)

			if tt.wantError == "" {
				assert.False(t, problems.HasErrors(), problems.Error())
			} else {
				assert.Contains(t, messages(problems, formErrors.SeverityError), tt.wantError)
			}
			if tt.wantWarning != "" {
				assert.Contains(t, messages(problems, formErrors.SeverityWarning), tt.wantWarning)
			}
		})
	}
}

func TestStructuralValidator_DepthAndCycles(t *testing.T) {
	leaf := ast.Leaf(ast.FieldRef{ID: "a", Type: ast.FieldTypeText}, ast.OperatorIsEmpty, nil)

	t.Run("too deep", func(t *testing.T) {
		form := ast.NewForm("f",
			&ast.Field{ID: "a", Type: ast.FieldTypeText},
			&ast.Field{ID: "b", Type: ast.FieldTypeText, Logic: requireWhen(ast.And(ast.And(leaf)))},
		)
		problems := NewStructuralValidator(2).Check(form)
		assert.Contains(t, messages(problems, formErrors.SeverityError),
			"Condition nesting depth 4 exceeds maximum depth of 2")
	})

	t.Run("cycle", func(t *testing.T) {
		cycle := ast.Or(leaf)
		cycle.Children = append(cycle.Children, cycle)
		form := ast.NewForm("f",
			&ast.Field{ID: "a", Type: ast.FieldTypeText},
			&ast.Field{ID: "b", Type: ast.FieldTypeText, Logic: &ast.Logic{
				Conditions: cycle,
				Actions:    []ast.ActionType{ast.ActionShow},
			}},
		)
		problems := NewStructuralValidator(DefaultMaxDepth).Check(form)
		assert.Contains(t, messages(problems, formErrors.SeverityError), "Condition tree contains a cycle")
	})
}

func TestSemanticValidator(t *testing.T) {
	base := func(logic *ast.Logic) *ast.Form {
		return ast.NewForm("f",
			matrixField("usage"),
			&ast.Field{ID: "agree", Type: ast.FieldTypeCheckbox},
			&ast.Field{ID: "note", Type: ast.FieldTypeText, Logic: logic},
		)
	}

	tests := []struct {
		name           string
		leaf           *ast.ConditionNode
		wantError      string
		wantWarning    string
		wantSuggestion string
	}{
		{
			name: "valid leaf",
			leaf: ast.Leaf(ast.FieldRef{ID: "agree", Type: ast.FieldTypeCheckbox}, ast.OperatorEquals, true),
		},
		{
			name:           "unknown operator",
			leaf:           ast.Leaf(ast.FieldRef{ID: "agree"}, ast.Operator("equalz"), true),
			wantError:      `Unknown operator "equalz"`,
			wantSuggestion: "Did you mean 'equals'?",
		},
		{
			name:           "unknown field",
			leaf:           ast.Leaf(ast.FieldRef{ID: "agre"}, ast.OperatorEquals, true),
			wantWarning:    `Condition references unknown field "agre"`,
			wantSuggestion: "Did you mean 'agree'?",
		},
		{
			name:        "retyped field",
			leaf:        ast.Leaf(ast.FieldRef{ID: "agree", Type: ast.FieldTypeText}, ast.OperatorEquals, "yes"),
			wantWarning: `Condition expects "agree" to be a text field but it is checkbox`,
		},
		{
			name:           "inapplicable operator",
			leaf:           ast.Leaf(ast.FieldRef{ID: "agree"}, ast.OperatorContains, true),
			wantWarning:    `Operator "contains" does not apply to checkbox field "agree"`,
			wantSuggestion: "Operators for checkbox fields: equals, does_not_equal",
		},
		{
			name:        "self reference",
			leaf:        ast.Leaf(ast.FieldRef{ID: "note"}, ast.OperatorIsEmpty, nil),
			wantWarning: "Condition references its own field",
		},
		{
			name:        "matrix needs mapping",
			leaf:        ast.Leaf(ast.FieldRef{ID: "usage"}, ast.OperatorEquals, "a"),
			wantWarning: `Condition on matrix field "usage" needs a row to column mapping`,
		},
		{
			name:           "matrix unknown row",
			leaf:           ast.Leaf(ast.FieldRef{ID: "usage"}, ast.OperatorEquals, map[string]interface{}{"r3": "a"}),
			wantWarning:    `Condition references unknown row "r3" of matrix field "usage"`,
			wantSuggestion: "Did you mean 'r1'?",
		},
		{
			name:        "missing comparison value",
			leaf:        ast.Leaf(ast.FieldRef{ID: "agree"}, ast.OperatorEquals, nil),
			wantWarning: `Condition on "agree" has no comparison value`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := NewSemanticValidator().Check(base(requireWhen(tt.leaf)))

			if tt.wantError == "" && tt.wantWarning == "" {
				assert.Zero(t, problems.Count(), problems.Error())
				return
			}
			if tt.wantError != "" {
				assert.Contains(t, messages(problems, formErrors.SeverityError), tt.wantError)
			}
			if tt.wantWarning != "" {
				assert.False(t, problems.HasErrors())
				assert.Contains(t, messages(problems, formErrors.SeverityWarning), tt.wantWarning)
			}
			if tt.wantSuggestion != "" {
				require.NotEmpty(t, problems.Errors)
				assert.Equal(t, tt.wantSuggestion, problems.Errors[0].Suggestion)
			}
		})
	}
}

func TestValidator_StrictAndCascade(t *testing.T) {
	stale := ast.NewForm("f", &ast.Field{ID: "note", Type: ast.FieldTypeText, Logic: requireWhen(
		ast.Leaf(ast.FieldRef{ID: "gone"}, ast.OperatorIsEmpty, nil),
	)})

	assert.NoError(t, NewValidator().Validate(stale))
	assert.True(t, NewValidator().Check(stale).HasWarnings())

	err := NewValidator().WithStrict(true).Validate(stale)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), `unknown field "gone"`))

	// Structural errors suppress the semantic pass.
	broken := ast.NewForm("", &ast.Field{ID: "note", Type: ast.FieldTypeText, Logic: requireWhen(
		ast.Leaf(ast.FieldRef{ID: "gone"}, ast.Operator("nope"), nil),
	)})
	problems := NewValidator().Check(broken)
	assert.NotEmpty(t, problems.ByType(formErrors.ErrorTypeStructural))
	assert.Empty(t, problems.ByType(formErrors.ErrorTypeSemantic))
}

func floatPtr(f float64) *float64 {
	return &f
}
