// Package form loads form definitions for the evaluation engine.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: in-memory form definitions and condition trees
// - parser: YAML/JSON parsing and AST construction with source locations
// - validator: structural and semantic checks with severities
// - errors: load-time problems with locations and suggestions
//
// # Basic Usage
//
//	form, err := form.Load("forms/signup.yaml")
//	if err != nil {
//	    // *errors.ErrorList with every problem found
//	    log.Fatal(err)
//	}
//
// Use a Loader to change limits or to inspect warnings:
//
//	loader := form.NewLoader().WithMaxDepth(6).WithStrict(true)
//	f, problems := loader.Check("forms/signup.yaml")
package form
