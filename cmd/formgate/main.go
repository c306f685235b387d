// Formgate serves conditional form logic and validation.
//
// It loads declarative form definitions, resolves which fields are visible and
// required from the answers submitted so far, and validates single fields or
// complete submissions:
//   - Show/hide and require rules driven by nested and/or conditions
//   - Type-aware validation with field-keyed error messages
//   - Hot reload of form definitions from disk
//   - Persisted diagnostics for stale or unsupported form logic
//
// Usage:
//
//	# Start the HTTP API
//	formgate serve --config config.yaml
//
//	# Check form definitions
//	formgate lint forms/
//
//	# Evaluate a submission from the command line
//	formgate eval --form forms/signup.yaml --data answers.json
//
//	# Inspect recorded diagnostics
//	formgate diagnostics list --form signup
package main

import (
	"errors"
	"fmt"
	"os"

	"mercator-hq/formgate/pkg/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := Execute()
	if err == nil {
		return 0
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}
