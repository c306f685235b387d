package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mercator-hq/formgate/pkg/cli"
	"mercator-hq/formgate/pkg/logic/engine"
)

func resetEvalFlags() {
	evalFlags.form = "testdata/signup.yaml"
	evalFlags.data = ""
	evalFlags.fields = nil
	evalFlags.mode = string(engine.ModeComplete)
	evalFlags.output = "table"
}

func TestEvalSubmissionValid(t *testing.T) {
	resetEvalFlags()
	evalFlags.data = "testdata/answers-valid.json"
	cmd, out := newTestCommand()

	if err := evalSubmission(cmd, nil); err != nil {
		t.Fatalf("evalSubmission() returned error: %v", err)
	}
	for _, want := range []string{"FIELD", "email", "has_company", "company"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, out.String())
		}
	}
}

func TestEvalSubmissionInvalid(t *testing.T) {
	resetEvalFlags()
	evalFlags.data = "testdata/answers-invalid.yaml"
	evalFlags.output = "json"
	cmd, out := newTestCommand()

	err := evalSubmission(cmd, nil)
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("evalSubmission() error = %v, want exit status 1", err)
	}

	var result engine.EvaluationResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if !result.States["company"].Visible || !result.States["company"].Required {
		t.Errorf("company state = %+v, want visible and required", result.States["company"])
	}
	company, ok := result.Fields["company"]
	if !ok || len(company.Errors) != 1 || company.Errors[0].Reason != engine.ReasonRequired {
		t.Errorf("company result = %+v, want one required error", company)
	}
}

func TestEvalSubmissionPartial(t *testing.T) {
	resetEvalFlags()
	evalFlags.mode = string(engine.ModePartial)
	evalFlags.fields = []string{"email"}
	evalFlags.output = "text"
	cmd, out := newTestCommand()
	cmd.SetIn(strings.NewReader(`{"email": "not-an-email"}`))
	evalFlags.data = "-"

	if err := evalSubmission(cmd, nil); err == nil {
		t.Fatal("evalSubmission() should fail for an invalid email")
	}
	if !strings.Contains(out.String(), "must be a valid email address") {
		t.Errorf("output missing email error:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "company\tno\tno\t-") {
		t.Errorf("unvalidated field should be marked '-':\n%s", out.String())
	}
}

func TestEvalSubmissionFlagErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
	}{
		{"unknown mode", func() { evalFlags.mode = "eager" }},
		{"partial without fields", func() { evalFlags.mode = string(engine.ModePartial) }},
		{"unknown output", func() { evalFlags.output = "csv" }},
		{"missing form", func() { evalFlags.form = "" }},
		{"missing data file", func() { evalFlags.data = "testdata/nope.json" }},
		{"form not found", func() { evalFlags.form = "testdata/nope.yaml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetEvalFlags()
			tt.setup()
			cmd, _ := newTestCommand()

			err := evalSubmission(cmd, nil)
			if err == nil {
				t.Fatal("evalSubmission() should return error")
			}
			var exitErr *cli.ExitError
			if errors.As(err, &exitErr) {
				t.Errorf("evalSubmission() returned validation exit for a usage error: %v", err)
			}
		})
	}
}

func TestReadSubmission(t *testing.T) {
	data, err := readSubmission(nil, "")
	if err != nil || len(data) != 0 {
		t.Errorf("readSubmission(\"\") = %v, %v; want empty submission", data, err)
	}

	data, err = readSubmission(nil, "testdata/answers-invalid.yaml")
	if err != nil {
		t.Fatalf("readSubmission() returned error: %v", err)
	}
	if data["has_company"] != true {
		t.Errorf("has_company = %v, want true", data["has_company"])
	}
}
