package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mercator-hq/formgate/pkg/cli"
	"mercator-hq/formgate/pkg/form/ast"
	"mercator-hq/formgate/pkg/logic/engine"
	"mercator-hq/formgate/pkg/logic/manager"
)

var evalFlags struct {
	form   string
	data   string
	fields []string
	mode   string
	output string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a submission against a form",
	Long: `Resolve field visibility and requiredness for a submission and validate it.

The submission is a JSON or YAML object keyed by field id, read from --data or,
when --data is "-", from stdin. Complete mode validates every visible field;
partial mode validates only the --fields given.

The command exits with status 1 when validation fails.

Examples:
  # Validate a complete submission
  formgate eval --form forms/signup.yaml --data answers.json

  # Live-validate two fields
  formgate eval --form forms/signup.yaml --data answers.yaml --mode partial --fields email,company

  # Read answers from stdin, JSON output
  echo '{"email": "ada@example.com"}' | formgate eval --form forms/signup.yaml --data - --output json`,
	RunE: evalSubmission,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalFlags.form, "form", "f", "", "form definition file (required)")
	evalCmd.Flags().StringVarP(&evalFlags.data, "data", "d", "", "submission file, or - for stdin")
	evalCmd.Flags().StringSliceVar(&evalFlags.fields, "fields", nil, "field ids to validate in partial mode")
	evalCmd.Flags().StringVar(&evalFlags.mode, "mode", string(engine.ModeComplete), "evaluation mode: partial, complete")
	evalCmd.Flags().StringVarP(&evalFlags.output, "output", "o", "table", "output format: text, table, json")
	_ = evalCmd.MarkFlagRequired("form")
	_ = evalCmd.RegisterFlagCompletionFunc("mode", fixedCompletions("partial", "complete"))
	_ = evalCmd.RegisterFlagCompletionFunc("output", fixedCompletions("text", "table", "json"))
}

func evalSubmission(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(evalFlags.output, cli.FormatText, cli.FormatTable, cli.FormatJSON)
	if err != nil {
		return err
	}

	mode := engine.Mode(evalFlags.mode)
	switch mode {
	case engine.ModeComplete:
	case engine.ModePartial:
		if len(evalFlags.fields) == 0 {
			return cli.NewConfigError("fields", "partial mode requires at least one field id")
		}
	default:
		return cli.NewConfigError("mode", fmt.Sprintf("invalid mode %q (must be partial or complete)", evalFlags.mode))
	}
	if evalFlags.form == "" {
		return cli.NewConfigError("form", "a form file is required")
	}

	data, err := readSubmission(cmd, evalFlags.data)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	cfg := *currentConfig()
	cfg.Forms.Path = evalFlags.form
	cfg.Forms.Watch = false

	m, err := manager.NewManager(&cfg, nil, nil)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}
	defer m.Close()

	if err := m.Load(); err != nil {
		return cli.NewCommandError("eval", err)
	}
	forms := m.Forms()
	if len(forms) != 1 {
		return cli.NewCommandError("eval", fmt.Errorf("expected one form in %s, found %d", evalFlags.form, len(forms)))
	}
	f := forms[0]

	ctx := context.Background()
	var result *engine.EvaluationResult
	if mode == engine.ModePartial {
		result, err = m.ValidateFields(ctx, f.ID, data, evalFlags.fields...)
	} else {
		result, err = m.ValidateSubmission(ctx, f.ID, data)
	}
	if result == nil {
		return cli.NewCommandError("eval", err)
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(stdout(cmd), result); err != nil {
			return err
		}
	} else {
		if err := cli.NewFormatter(format).FormatTo(stdout(cmd), newEvalRows(f, result)); err != nil {
			return err
		}
		for _, d := range result.Diagnostics {
			fmt.Fprintf(stderr(cmd), "⚠  %s: %s\n", d.Kind, d.Message)
		}
	}

	if !result.Valid() {
		return cli.NewExitError(1, fmt.Errorf("%d validation error(s) in form %q", result.ErrorCount(), f.ID))
	}
	return nil
}

// readSubmission decodes a JSON or YAML object from path, or from stdin for "-".
// An empty path is an empty submission.
func readSubmission(cmd *cobra.Command, path string) (engine.Submission, error) {
	var raw []byte
	var err error
	switch path {
	case "":
		return engine.Submission{}, nil
	case "-":
		in := io.Reader(os.Stdin)
		if cmd != nil {
			in = cmd.InOrStdin()
		}
		raw, err = io.ReadAll(in)
	default:
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read submission: %w", err)
	}

	data := engine.Submission{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode submission: %w", err)
	}
	return data, nil
}

// evalRows renders an evaluation result one field per row in form order.
type evalRows [][]string

func newEvalRows(f *ast.Form, result *engine.EvaluationResult) evalRows {
	var rows evalRows
	for _, field := range f.Fields {
		state, ok := result.States[field.ID]
		if !ok {
			continue
		}
		errs := "-"
		if fr, ok := result.Fields[field.ID]; ok {
			errs = "ok"
			if !fr.Valid() {
				msgs := make([]string, len(fr.Errors))
				for i, e := range fr.Errors {
					msgs[i] = e.Message
				}
				errs = strings.Join(msgs, "; ")
			}
		}
		rows = append(rows, []string{field.ID, yesNo(state.Visible), yesNo(state.Required), errs})
	}
	return rows
}

func (r evalRows) Header() []string { return []string{"FIELD", "VISIBLE", "REQUIRED", "RESULT"} }
func (r evalRows) Rows() [][]string { return r }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
