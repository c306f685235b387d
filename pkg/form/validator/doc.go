// Package validator checks parsed form definitions before they are evaluated.
//
// The validator performs two passes:
//
// 1. Structural Validation: field ids present and unique, known field types,
// consistent type configuration, well-formed logic blocks (known actions, known
// combinators, no cycles, bounded depth)
//
// 2. Semantic Validation: known operators, references to existing fields of the
// expected type, operators applicable to the referenced type, comparison values shaped
// like the referenced field's value
//
// Semantic validation only runs when the structural pass found no errors.
//
// Every problem carries a severity. Errors make a definition malformed and block
// loading. Warnings describe conditions the engine will evaluate as false at runtime
// (stale references, inapplicable operators); strict mode promotes them to errors.
//
// # Basic Usage
//
//	form, err := parser.NewParser().Parse("signup.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	problems := validator.NewValidator().WithStrict(false).Check(form)
//	for _, w := range problems.Warnings() {
//	    fmt.Print(w.Error())
//	}
//	if err := problems.ToError(); err != nil {
//	    log.Fatal(err)
//	}
package validator
