package engine

import (
	"fmt"

	"mercator-hq/formgate/pkg/form/ast"
)

// evaluation carries the inputs of one condition tree evaluation. It is owned by a
// single goroutine.
type evaluation struct {
	form       *ast.Form
	data       Submission
	fieldID    string
	comparator *Comparator
	maxDepth   int

	diagnostics   []Diagnostic
	depthReported bool
}

// match evaluates node at depth (the root is depth 1). It never fails: every problem
// makes the affected node false and is recorded as a diagnostic.
func (ev *evaluation) match(node *ast.ConditionNode, depth int) bool {
	if node == nil {
		return true // No condition means always match
	}
	if depth > ev.maxDepth {
		if !ev.depthReported {
			ev.depthReported = true
			ev.report(Diagnostic{
				Kind:    DiagnosticDepthExceeded,
				Message: fmt.Sprintf("condition nesting exceeds maximum depth of %d", ev.maxDepth),
			})
		}
		return false
	}

	switch node.Type {
	case ast.ConditionTypeGroup:
		return ev.matchGroup(node, depth)
	case ast.ConditionTypeLeaf:
		return ev.matchLeaf(node)
	default:
		return false
	}
}

// matchGroup short-circuits. An empty AND is true and an empty OR is false.
func (ev *evaluation) matchGroup(node *ast.ConditionNode, depth int) bool {
	switch node.Combinator {
	case ast.CombinatorAnd:
		for _, child := range node.Children {
			if !ev.match(child, depth+1) {
				return false
			}
		}
		return true

	case ast.CombinatorOr:
		for _, child := range node.Children {
			if ev.match(child, depth+1) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

func (ev *evaluation) matchLeaf(node *ast.ConditionNode) bool {
	ref, ok := ev.form.Field(node.Field.ID)
	if !ok {
		ev.report(Diagnostic{
			Kind:      DiagnosticStaleReference,
			Reference: node.Field.ID,
			Operator:  node.Operator,
			Message:   fmt.Sprintf("referenced field %q does not exist", node.Field.ID),
		})
		return false
	}
	if node.Field.Type != "" && node.Field.Type != ref.Type {
		ev.report(Diagnostic{
			Kind:      DiagnosticStaleReference,
			Reference: node.Field.ID,
			Operator:  node.Operator,
			Message: fmt.Sprintf("referenced field %q changed type from %s to %s",
				node.Field.ID, node.Field.Type, ref.Type),
		})
		return false
	}

	matched, supported := ev.comparator.Compare(ref.Type, node.Operator, ev.data.Lookup(ref), node.Value)
	if !supported {
		ev.report(Diagnostic{
			Kind:      DiagnosticUnsupportedOperator,
			Reference: node.Field.ID,
			Operator:  node.Operator,
			Message:   fmt.Sprintf("operator %q does not apply to %s fields", node.Operator, ref.Type),
		})
		return false
	}
	return matched
}

func (ev *evaluation) report(d Diagnostic) {
	if ev.form != nil {
		d.FormID = ev.form.ID
	}
	d.FieldID = ev.fieldID
	ev.diagnostics = append(ev.diagnostics, d)
}
