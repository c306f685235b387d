package ast

import "strings"

// ActionType is an effect applied to the owning field when its logic holds.
type ActionType string

const (
	ActionShow      ActionType = "show"
	ActionHide      ActionType = "hide"
	ActionRequire   ActionType = "require"
	ActionUnrequire ActionType = "unrequire"
)

var actionAliases = map[string]ActionType{
	"show-block":       ActionShow,
	"hide-block":       ActionHide,
	"require-answer":   ActionRequire,
	"make-it-optional": ActionUnrequire,
	"optional":         ActionUnrequire,
}

// ActionTypes returns every supported action.
func ActionTypes() []ActionType {
	return []ActionType{ActionShow, ActionHide, ActionRequire, ActionUnrequire}
}

// IsKnown reports whether a is a supported action.
func (a ActionType) IsKnown() bool {
	switch a {
	case ActionShow, ActionHide, ActionRequire, ActionUnrequire:
		return true
	}
	return false
}

// ParseAction resolves canonical names and the block-style aliases used by form
// builders ("show-block", "require-answer", ...).
func ParseAction(s string) (ActionType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if a := ActionType(s); a.IsKnown() {
		return a, true
	}
	if a, ok := actionAliases[s]; ok {
		return a, true
	}
	return ActionType(s), false
}
