package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"mercator-hq/formgate/pkg/cli"
	formErrors "mercator-hq/formgate/pkg/form/errors"
	"mercator-hq/formgate/pkg/logic/manager"
)

var lintFlags struct {
	strict   bool
	format   string
	progress bool
}

var lintCmd = &cobra.Command{
	Use:   "lint [path...]",
	Short: "Validate form definitions",
	Long: `Validate form definition files for syntax, structural and semantic problems.

Each path is a form file or a directory searched recursively for the configured
extensions. Without arguments the configured forms.path is checked.

Checks include:
  - YAML/JSON syntax
  - Field ids, types and type configuration
  - Logic blocks: actions, combinators, nesting depth
  - Condition references and operators (warnings unless --strict)
  - Form ids declared by more than one file

Examples:
  # Lint the configured forms directory
  formgate lint

  # Lint specific files, failing on warnings
  formgate lint forms/signup.yaml forms/feedback.yaml --strict

  # JSON output for CI/CD
  formgate lint forms/ --format json`,
	RunE: lintForms,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
	lintCmd.Flags().BoolVar(&lintFlags.progress, "progress", false, "show a progress bar on stderr")
	_ = lintCmd.RegisterFlagCompletionFunc("format", fixedCompletions("text", "json"))
}

// LintResult is the lint outcome for a single form file.
type LintResult struct {
	File     string        `json:"file"`
	FormID   string        `json:"form_id,omitempty"`
	Valid    bool          `json:"valid"`
	Errors   []LintProblem `json:"errors,omitempty"`
	Warnings []LintProblem `json:"warnings,omitempty"`
}

// LintProblem is a single error or warning.
type LintProblem struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	FieldID    string `json:"field_id,omitempty"`
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func lintForms(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(lintFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}

	cfg := currentConfig()
	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.Forms.Path}
	}

	loaderCfg := manager.LoaderConfigFrom(cfg.Forms, cfg.Engine.MaxDepth)
	loaderCfg.Strict = loaderCfg.Strict || lintFlags.strict
	loader := manager.NewFormLoader(loaderCfg, nil)

	var files []string
	for _, path := range paths {
		found, err := loader.Files(path)
		if err != nil {
			return cli.NewCommandError("lint", err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return cli.NewCommandError("lint", fmt.Errorf("no form files found"))
	}

	var progress cli.ProgressReporter
	if lintFlags.progress {
		progress = cli.NewProgressReporter(stderr(cmd), "Linting", "files")
		progress.Start(int64(len(files)))
	}

	results := make([]LintResult, 0, len(files))
	declared := make(map[string]string)
	for i, file := range files {
		result := lintFile(loader, file)
		if result.FormID != "" {
			if other, ok := declared[result.FormID]; ok {
				result.Valid = false
				result.Errors = append(result.Errors, LintProblem{
					Type:    "duplicate",
					Message: fmt.Sprintf("form id %q is also declared by %s", result.FormID, other),
				})
			} else {
				declared[result.FormID] = file
			}
		}
		results = append(results, result)
		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}
	if progress != nil {
		progress.Finish()
	}

	var printErr error
	if format == cli.FormatJSON {
		printErr = printLintJSON(cmd, results)
	} else {
		printLintText(cmd, results)
	}
	if printErr != nil {
		return printErr
	}

	failed := 0
	for _, r := range results {
		if !r.Valid {
			failed++
		}
	}
	if failed > 0 {
		return cli.NewExitError(1, fmt.Errorf("%d of %d form files failed validation", failed, len(results)))
	}
	return nil
}

func lintFile(loader *manager.FormLoader, file string) LintResult {
	result := LintResult{File: file, Valid: true}

	loaded, problems, err := loader.Inspect(file)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, LintProblem{Type: string(formErrors.ErrorTypeIO), Message: err.Error()})
		return result
	}
	if loaded != nil {
		result.FormID = loaded.Form.ID
	} else {
		result.Valid = false
	}

	for _, p := range problems.Errors {
		problem := LintProblem{
			Line:       p.Location.Line,
			Column:     p.Location.Column,
			FieldID:    p.FieldID,
			Type:       string(p.Type),
			Message:    p.Message,
			Suggestion: p.Suggestion,
		}
		if p.IsWarning() {
			result.Warnings = append(result.Warnings, problem)
		} else {
			result.Errors = append(result.Errors, problem)
		}
	}
	return result
}

func printLintText(cmd *cobra.Command, results []LintResult) {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		printf(cmd, "Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			printf(cmd, "✓ Form %q valid\n", result.FormID)
		}

		for _, p := range result.Errors {
			printf(cmd, "✗ Error: %s%s\n", p.Message, p.detail())
			totalErrors++
		}
		for _, p := range result.Warnings {
			printf(cmd, "⚠  Warning: %s%s\n", p.Message, p.detail())
			totalWarnings++
		}
		printf(cmd, "\n")
	}

	printf(cmd, "Summary:\n")
	printf(cmd, "  %d file(s), %d error(s), %d warning(s)\n", len(results), totalErrors, totalWarnings)
}

func (p LintProblem) detail() string {
	var s string
	if p.Line > 0 {
		s += fmt.Sprintf(" (line %d", p.Line)
		if p.Column > 0 {
			s += fmt.Sprintf(", col %d", p.Column)
		}
		s += ")"
	}
	if p.FieldID != "" {
		s += fmt.Sprintf(" field %s", p.FieldID)
	}
	if p.Type != "" {
		s += fmt.Sprintf(" [%s]", p.Type)
	}
	if p.Suggestion != "" {
		s += fmt.Sprintf("\n   suggestion: %s", p.Suggestion)
	}
	return s
}

func printLintJSON(cmd *cobra.Command, results []LintResult) error {
	encoder := json.NewEncoder(stdout(cmd))
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
