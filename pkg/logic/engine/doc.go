// Package engine evaluates form logic and validates submissions.
//
// Given a form definition and a possibly partial submission, the engine decides for
// every field whether it is visible, whether it is required, and whether its submitted
// value is valid. The same code runs for live single-field validation and for the
// authoritative submission check, so both always agree.
//
// # Architecture
//
// The engine is built from four layers, leaf first:
//
//  1. Comparator - table from (field family, operator) to a pure comparison function
//  2. Evaluator - short-circuiting, depth-bounded walk of a condition tree
//  3. Resolver - folds a field's actions over its base state when its logic holds
//  4. Validators - required check plus per-type checks (matrix rows and columns, ...)
//
// # Evaluation Flow
//
//	Form + Submission
//	       ↓
//	For each field (optionally in parallel):
//	  base state {visible: !hidden, required}
//	  logic holds? → apply actions in order
//	  hidden → not required
//	       ↓
//	For each requested (partial) or visible (complete) field:
//	  validate value against resolved state
//	       ↓
//	EvaluationResult (states, field errors, diagnostics)
//
// # Totality
//
// Evaluation never fails on data. Missing keys, explicit nulls and values of the wrong
// shape read as the type's empty value. A leaf that references a deleted or retyped
// field, uses an operator its field type does not support, or sits below the depth
// ceiling evaluates false and produces a Diagnostic for operators. Diagnostics never
// reach end users.
//
// # Basic Usage
//
//	eng, err := engine.NewEngine(engine.DefaultEngineConfig(), nil, logger)
//	if err != nil {
//	    return err
//	}
//
//	// Live validation of the field the user just edited
//	result, err := eng.EvaluatePartial(form, data, "email")
//
//	// Submission
//	result, err = eng.EvaluateComplete(form, data)
//	if err := result.Err(); err != nil {
//	    // *engine.SubmissionError, marshals to {"message", "errors"}
//	}
package engine
