package engine

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"mercator-hq/formgate/pkg/form/ast"
)

// Engine resolves field states and validates submissions against form definitions.
//
// Evaluation is pure: the engine keeps no per-call state and never mutates the form or
// the submission, so a single Engine and a single *ast.Form may be shared by any
// number of concurrent evaluations.
type Engine struct {
	config     *EngineConfig
	comparator *Comparator
	messages   *messageCatalog
	reporter   Reporter
	logger     *slog.Logger
}

// NewEngine creates an engine. A nil config uses DefaultEngineConfig and a nil
// reporter discards diagnostics.
func NewEngine(config *EngineConfig, reporter Reporter, logger *slog.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultEngineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		config:     config,
		comparator: NewComparator(),
		messages:   newMessageCatalog(config.Messages),
		reporter:   reporter,
		logger:     logger.With("component", "engine"),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *EngineConfig {
	return e.config
}

// EvaluateCondition evaluates a condition tree against data. Problems found on the way
// are returned as diagnostics and make the affected leaves false.
func (e *Engine) EvaluateCondition(form *ast.Form, condition *ast.ConditionNode, data Submission) (bool, []Diagnostic) {
	ev := e.newEvaluation(form, "", data)
	matched := ev.match(condition, 1)
	return matched, ev.diagnostics
}

// ResolveStates computes {visible, required} for every field of form.
func (e *Engine) ResolveStates(form *ast.Form, data Submission) (map[string]FieldState, error) {
	if form == nil {
		return nil, ErrNilForm
	}
	states, diagnostics := e.resolveAll(form, data)
	e.forward(diagnostics)
	return stateMap(form, states), nil
}

// EvaluatePartial resolves every field and validates only the requested ones. Ids the
// form does not define are skipped and reported as unknown_field diagnostics.
func (e *Engine) EvaluatePartial(form *ast.Form, data Submission, fieldIDs ...string) (*EvaluationResult, error) {
	if form == nil {
		return nil, ErrNilForm
	}

	states, diagnostics := e.resolveAll(form, data)
	positions := firstPositions(form)

	var targets []int
	seen := make(map[string]bool, len(fieldIDs))
	for _, id := range fieldIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		i, ok := positions[id]
		if !ok {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:    DiagnosticUnknownField,
				FormID:  form.ID,
				FieldID: id,
				Message: fmt.Sprintf("form %q has no field %q", form.ID, id),
			})
			continue
		}
		targets = append(targets, i)
	}

	result := e.validate(form, data, states, targets)
	result.Mode = ModePartial
	result.Diagnostics = diagnostics
	e.forward(diagnostics)
	return result, nil
}

// EvaluateComplete resolves and validates every field. Hidden fields are excluded from
// validation and from Answers. Use result.Err() to obtain the aggregated
// *SubmissionError.
func (e *Engine) EvaluateComplete(form *ast.Form, data Submission) (*EvaluationResult, error) {
	if form == nil {
		return nil, ErrNilForm
	}

	states, diagnostics := e.resolveAll(form, data)

	positions := firstPositions(form)

	var targets []int
	for i, field := range form.Fields {
		if positions[field.ID] == i && states[i].Visible {
			targets = append(targets, i)
		}
	}

	result := e.validate(form, data, states, targets)
	result.Mode = ModeComplete
	result.Diagnostics = diagnostics
	result.Answers = make(map[string]interface{})
	for _, i := range targets {
		id := form.Fields[i].ID
		if raw, ok := data[id]; ok && raw != nil {
			result.Answers[id] = raw
		}
	}

	e.forward(diagnostics)
	return result, nil
}

// Evaluate dispatches on mode.
func (e *Engine) Evaluate(form *ast.Form, data Submission, mode Mode, fieldIDs ...string) (*EvaluationResult, error) {
	switch mode {
	case ModePartial:
		return e.EvaluatePartial(form, data, fieldIDs...)
	case ModeComplete, "":
		return e.EvaluateComplete(form, data)
	default:
		return nil, fmt.Errorf("unknown evaluation mode %q", mode)
	}
}

// resolveAll returns field states by document position and their diagnostics merged
// in document order.
func (e *Engine) resolveAll(form *ast.Form, data Submission) ([]FieldState, []Diagnostic) {
	states := make([]FieldState, len(form.Fields))
	perField := make([][]Diagnostic, len(form.Fields))

	e.forEach(len(form.Fields), func(i int) {
		states[i], perField[i] = e.resolveField(form, form.Fields[i], data)
	})

	var diagnostics []Diagnostic
	for _, d := range perField {
		diagnostics = append(diagnostics, d...)
	}
	return states, diagnostics
}

// validate runs the type validators for the fields at targets.
func (e *Engine) validate(form *ast.Form, data Submission, states []FieldState, targets []int) *EvaluationResult {
	results := make([]*FieldResult, len(targets))
	e.forEach(len(targets), func(n int) {
		i := targets[n]
		field := form.Fields[i]
		results[n] = &FieldResult{
			Visible:  states[i].Visible,
			Required: states[i].Required,
			Errors:   e.ValidateField(field, states[i], data.Lookup(field)),
		}
		if results[n].Errors == nil {
			results[n].Errors = []ErrorMessage{}
		}
	})

	result := &EvaluationResult{
		FormID: form.ID,
		States: stateMap(form, states),
		Fields: make(map[string]*FieldResult, len(targets)),
		order:  make([]string, 0, len(targets)),
	}
	for n, i := range targets {
		id := form.Fields[i].ID
		result.Fields[id] = results[n]
		result.order = append(result.order, id)
	}
	return result
}

// forEach calls fn for every index in [0, n). It fans out over a bounded errgroup when
// parallelism is configured and n reaches the threshold. Callers write results into
// index-addressed slots so output never depends on scheduling.
func (e *Engine) forEach(n int, fn func(i int)) {
	if e.config.Parallelism < 2 || n < 2 || n < e.config.ParallelThreshold {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(e.config.Parallelism)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) forward(diagnostics []Diagnostic) {
	for _, d := range diagnostics {
		e.logger.Debug("condition diagnostic",
			"kind", d.Kind,
			"form", d.FormID,
			"field", d.FieldID,
			"reference", d.Reference,
			"operator", d.Operator,
			"message", d.Message,
		)
		e.reporter.Report(d)
	}
}

// stateMap keys states by field id. The first field wins for duplicate ids.
func stateMap(form *ast.Form, states []FieldState) map[string]FieldState {
	out := make(map[string]FieldState, len(states))
	for i, field := range form.Fields {
		if _, dup := out[field.ID]; dup {
			continue
		}
		out[field.ID] = states[i]
	}
	return out
}

// firstPositions maps each field id to the document position of its first field.
func firstPositions(form *ast.Form) map[string]int {
	out := make(map[string]int, len(form.Fields))
	for i, field := range form.Fields {
		if _, dup := out[field.ID]; !dup {
			out[field.ID] = i
		}
	}
	return out
}
