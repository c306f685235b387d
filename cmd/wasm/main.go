//go:build js && wasm

// Package main provides WASM bindings for the formgate engine so browsers can
// resolve field visibility and validate answers with the server's rules.
package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"syscall/js"

	"mercator-hq/formgate/pkg/form"
	"mercator-hq/formgate/pkg/logic/engine"
	"mercator-hq/formgate/pkg/telemetry/logging"
)

var eng *engine.Engine

func main() {
	var err error
	eng, err = engine.NewEngine(engine.DefaultEngineConfig(), nil, logging.Discard())
	if err != nil {
		panic(err)
	}

	js.Global().Set("formgateEvaluate", js.FuncOf(evaluate))
	js.Global().Set("formgateCheck", js.FuncOf(check))

	// Keep the Go runtime alive
	select {}
}

// evaluate is the JS-callable wrapper for Engine.Evaluate.
// Usage: formgateEvaluate(formJSON, dataJSON, mode, fields) -> { result: object, error?: string }
// fields is an array or a comma-separated string of field ids, used in partial mode.
func evaluate(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return makeError("formgateEvaluate requires at least 2 arguments: formJSON, dataJSON")
	}

	f, err := form.LoadBytes([]byte(args[0].String()), "form.json")
	if err != nil {
		return makeError(err.Error())
	}

	data := engine.Submission{}
	dec := json.NewDecoder(bytes.NewReader([]byte(args[1].String())))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return makeError("invalid submission JSON: " + err.Error())
	}

	mode := engine.ModeComplete
	if len(args) > 2 && args[2].Type() == js.TypeString {
		mode = engine.Mode(args[2].String())
	}

	var fields []string
	if len(args) > 3 {
		fields = fieldIDs(args[3])
	}

	result, err := eng.Evaluate(f, data, mode, fields...)
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(result)
}

// check is the JS-callable wrapper for Loader.CheckBytes.
// Usage: formgateCheck(formJSON) -> { valid: boolean, problems: string[] }
func check(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return makeError("formgateCheck requires 1 argument: formJSON")
	}

	_, problems := form.NewLoader().CheckBytes([]byte(args[0].String()), "form.json")
	messages := make([]any, 0, problems.Count())
	for _, p := range problems.Errors {
		messages = append(messages, strings.TrimSpace(p.Error()))
	}
	return map[string]any{
		"valid":    !problems.HasErrors(),
		"problems": messages,
	}
}

func fieldIDs(v js.Value) []string {
	switch v.Type() {
	case js.TypeString:
		if v.String() == "" {
			return nil
		}
		return strings.Split(v.String(), ",")
	case js.TypeObject:
		ids := make([]string, v.Length())
		for i := range ids {
			ids[i] = v.Index(i).String()
		}
		return ids
	default:
		return nil
	}
}

// makeError creates a JS-friendly error response
func makeError(msg string) map[string]any {
	return map[string]any{
		"error": msg,
	}
}

// makeResult converts the result to plain JS values through its JSON form.
func makeResult(result *engine.EvaluationResult) map[string]any {
	raw, err := json.Marshal(result)
	if err != nil {
		return makeError(err.Error())
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return makeError(err.Error())
	}

	resp := map[string]any{"result": out}
	if invalid := result.Err(); invalid != nil {
		resp["error"] = invalid.Error()
	}
	return resp
}
