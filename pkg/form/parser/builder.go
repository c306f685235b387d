package parser

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"mercator-hq/formgate/pkg/form/ast"
	formErrors "mercator-hq/formgate/pkg/form/errors"
)

// builder turns YAML nodes into AST nodes, recording every problem it meets.
type builder struct {
	sourcePath string
	maxDepth   int
	errors     *formErrors.ErrorList
}

func newBuilder(sourcePath string, maxDepth int) *builder {
	return &builder{
		sourcePath: sourcePath,
		maxDepth:   maxDepth,
		errors:     formErrors.NewErrorList(),
	}
}

func (b *builder) location(node *yaml.Node) ast.Location {
	if node == nil {
		return ast.Location{File: b.sourcePath}
	}
	return ast.Location{File: b.sourcePath, Line: node.Line, Column: node.Column}
}

func (b *builder) structural(fieldID string, node *yaml.Node, format string, args ...interface{}) {
	b.errors.AddError(formErrors.ErrorTypeStructural, fieldID, fmt.Sprintf(format, args...), b.location(node))
}

// buildForm accepts either a mapping with a "fields" key or a bare list of fields.
func (b *builder) buildForm(root *yaml.Node) (*ast.Form, error) {
	form := &ast.Form{Location: b.location(root)}

	var fieldNodes []yaml.Node
	switch root.Kind {
	case yaml.SequenceNode:
		fieldNodes = make([]yaml.Node, len(root.Content))
		for i, n := range root.Content {
			fieldNodes[i] = *n
		}
	case yaml.MappingNode:
		var yf yamlForm
		if err := root.Decode(&yf); err != nil {
			b.structural("", root, "Invalid form document: %v", err)
			return nil, b.errors
		}
		form.ID = yf.ID
		form.Name = yf.Name
		form.Version = yf.Version
		fieldNodes = yf.Fields
	default:
		b.structural("", root, "Form document must be a list of fields or a mapping with a 'fields' key")
		return nil, b.errors
	}

	form.Fields = make([]*ast.Field, 0, len(fieldNodes))
	for i := range fieldNodes {
		if field := b.buildField(&fieldNodes[i], i); field != nil {
			form.Fields = append(form.Fields, field)
		}
	}
	form.Reindex()

	if b.errors.HasErrors() {
		return nil, b.errors
	}
	return form, nil
}

func (b *builder) buildField(node *yaml.Node, index int) *ast.Field {
	if node.Kind != yaml.MappingNode {
		b.structural("", node, "Field at index %d must be a mapping", index)
		return nil
	}

	var yf yamlField
	if err := node.Decode(&yf); err != nil {
		b.structural("", node, "Invalid field at index %d: %v", index, err)
		return nil
	}

	field := &ast.Field{
		ID:       strings.TrimSpace(yf.ID),
		Name:     yf.Name,
		Type:     ast.FieldType(strings.TrimSpace(yf.Type)),
		Required: yf.Required,
		Hidden:   yf.Hidden,
		Location: b.location(node),
	}

	var raw map[string]interface{}
	if err := node.Decode(&raw); err != nil {
		b.structural(field.ID, node, "Invalid field configuration: %v", err)
		return nil
	}
	cfg, err := decodeTypeConfig(raw)
	if err != nil {
		b.structural(field.ID, node, "Invalid configuration for %s field: %v", field.Type, err)
	}
	field.Config = cfg

	if !isNull(&yf.Logic) {
		field.Logic = b.buildLogic(field.ID, &yf.Logic)
	}

	return field
}

func (b *builder) buildLogic(fieldID string, node *yaml.Node) *ast.Logic {
	var yl yamlLogic
	if err := node.Decode(&yl); err != nil {
		b.structural(fieldID, node, "Invalid logic block: %v", err)
		return nil
	}

	logic := &ast.Logic{Location: b.location(node)}
	if !isNull(&yl.Conditions) {
		logic.Conditions = b.buildCondition(fieldID, &yl.Conditions, 1)
		// A leaf at the top level is wrapped so the root is always a group.
		if logic.Conditions.IsLeaf() {
			root := ast.And(logic.Conditions)
			root.Location = logic.Conditions.Location
			logic.Conditions = root
		}
	}

	for _, raw := range yl.Actions {
		action, _ := ast.ParseAction(raw)
		logic.Actions = append(logic.Actions, action)
	}

	return logic
}

func (b *builder) buildCondition(fieldID string, node *yaml.Node, depth int) *ast.ConditionNode {
	if node.Kind == yaml.AliasNode {
		b.structural(fieldID, node, "YAML aliases are not allowed inside condition trees")
		return nil
	}
	if depth > b.maxDepth {
		b.structural(fieldID, node, "Condition nesting exceeds maximum depth of %d", b.maxDepth)
		return nil
	}
	if node.Kind != yaml.MappingNode {
		b.structural(fieldID, node, "Condition must be a mapping")
		return nil
	}

	var yc yamlCondition
	if err := node.Decode(&yc); err != nil {
		b.structural(fieldID, node, "Invalid condition: %v", err)
		return nil
	}

	switch {
	case yc.OperatorIdentifier != "":
		combinator, ok := ast.ParseCombinator(yc.OperatorIdentifier)
		if !ok {
			b.structural(fieldID, node, "Unknown operatorIdentifier %q, expected 'and' or 'or'", yc.OperatorIdentifier)
			return nil
		}
		group := &ast.ConditionNode{
			Type:       ast.ConditionTypeGroup,
			Combinator: combinator,
			Children:   make([]*ast.ConditionNode, 0, len(yc.Children)),
			Location:   b.location(node),
		}
		for i := range yc.Children {
			if child := b.buildCondition(fieldID, &yc.Children[i], depth+1); child != nil {
				group.Children = append(group.Children, child)
			}
		}
		return group

	case yc.Value != nil:
		op, _ := ast.ParseOperator(yc.Value.Operator)
		return &ast.ConditionNode{
			Type:       ast.ConditionTypeLeaf,
			Identifier: yc.Identifier,
			Field: ast.FieldRef{
				ID:   strings.TrimSpace(yc.Value.PropertyMeta.ID),
				Type: ast.FieldType(strings.TrimSpace(yc.Value.PropertyMeta.Type)),
			},
			Operator: op,
			Value:    yc.Value.Value,
			Location: b.location(node),
		}

	default:
		b.structural(fieldID, node, "Condition must be a group (operatorIdentifier) or a leaf (value)")
		return nil
	}
}

// decodeTypeConfig reads the flat type-specific keys of a field. Choice options may be
// plain strings or {id, name} objects, either at the top level or nested under a
// "select"/"multi_select" key.
func decodeTypeConfig(raw map[string]interface{}) (ast.TypeConfig, error) {
	var cfg ast.TypeConfig

	for _, nested := range []string{"select", "multi_select"} {
		if m, ok := raw[nested].(map[string]interface{}); ok {
			if opts, ok := m["options"]; ok {
				if _, exists := raw["options"]; !exists {
					raw["options"] = opts
				}
			}
		}
	}
	if opts, ok := raw["options"].([]interface{}); ok {
		raw["options"] = normalizeOptions(opts)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func normalizeOptions(opts []interface{}) []string {
	out := make([]string, 0, len(opts))
	for _, opt := range opts {
		switch v := opt.(type) {
		case map[string]interface{}:
			if name, ok := v["name"]; ok {
				out = append(out, fmt.Sprint(name))
			} else if id, ok := v["id"]; ok {
				out = append(out, fmt.Sprint(id))
			}
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
