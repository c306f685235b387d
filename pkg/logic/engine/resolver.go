package engine

import (
	"mercator-hq/formgate/pkg/form/ast"
)

// BaseState is the state of a field before its logic is applied.
func BaseState(field *ast.Field) FieldState {
	return FieldState{Visible: !field.Hidden, Required: field.Required}
}

// ApplyActions folds actions over state in authoring order. Later actions overwrite
// earlier ones. Unknown actions are ignored.
func ApplyActions(state FieldState, actions []ast.ActionType) FieldState {
	for _, action := range actions {
		switch action {
		case ast.ActionShow:
			state.Visible = true
		case ast.ActionHide:
			state.Visible = false
		case ast.ActionRequire:
			state.Required = true
		case ast.ActionUnrequire:
			state.Required = false
		}
	}
	return state
}

// resolveField computes the state of one field. Only the field's own logic is
// consulted; other fields influence it through the submission alone.
func (e *Engine) resolveField(form *ast.Form, field *ast.Field, data Submission) (FieldState, []Diagnostic) {
	state := BaseState(field)

	var diagnostics []Diagnostic
	if !field.Logic.IsInert() {
		ev := e.newEvaluation(form, field.ID, data)
		if ev.match(field.Logic.Conditions, 1) {
			state = ApplyActions(state, field.Logic.Actions)
		}
		diagnostics = ev.diagnostics

		e.logger.Debug("field logic evaluated",
			"form", form.ID,
			"field", field.ID,
			"visible", state.Visible,
			"required", state.Required,
		)
	}

	if !state.Visible {
		state.Required = false
	}
	return state, diagnostics
}

func (e *Engine) newEvaluation(form *ast.Form, fieldID string, data Submission) *evaluation {
	return &evaluation{
		form:       form,
		data:       data,
		fieldID:    fieldID,
		comparator: e.comparator,
		maxDepth:   e.config.MaxDepth,
	}
}
