// Package ast provides the in-memory representation of form definitions.
//
// A Form is an ordered list of Fields. Each Field has a type that fixes the shape of
// its submitted value (scalar, list or matrix), type-specific configuration, and an
// optional Logic block: a condition tree plus the actions applied to the field when
// the tree evaluates true.
//
// # Core Types
//
// Form: root node holding the ordered fields
//
// Field: a single input with id, label, type, base requiredness and visibility
//
// ConditionNode: tagged union of a group (and/or over children) or a leaf
// (field reference, operator, comparison value)
//
// ActionType: show, hide, require, unrequire
//
// Location: source position used in load-time error messages
//
// # Basic Usage
//
//	form, err := parser.NewParser().Parse("contact.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, field := range form.Fields {
//	    if field.Logic == nil {
//	        continue
//	    }
//	    ast.Walk(field.Logic.Conditions, func(node *ast.ConditionNode, depth int) bool {
//	        fmt.Println(depth, node.Type)
//	        return true
//	    })
//	}
//
// Forms are immutable after loading and may be shared by concurrent evaluations.
package ast
