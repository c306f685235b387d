package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlForm is the top-level document when it is a mapping. A bare sequence is read as
// the field list.
type yamlForm struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Version string      `yaml:"version"`
	Fields  []yaml.Node `yaml:"fields"`
}

// yamlField holds the keys shared by every field. Type-specific keys are decoded
// separately into ast.TypeConfig.
type yamlField struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Type     string    `yaml:"type"`
	Required bool      `yaml:"required"`
	Hidden   bool      `yaml:"hidden"`
	Logic    yaml.Node `yaml:"logic"`
}

type yamlLogic struct {
	Conditions yaml.Node `yaml:"conditions"`
	Actions    []string  `yaml:"actions"`
}

// yamlCondition is either a group (operatorIdentifier + children) or a leaf (value).
type yamlCondition struct {
	OperatorIdentifier string      `yaml:"operatorIdentifier"`
	Children           []yaml.Node `yaml:"children"`
	Identifier         string      `yaml:"identifier"`
	Value              *yamlLeaf   `yaml:"value"`
}

type yamlLeaf struct {
	PropertyMeta yamlPropertyMeta `yaml:"property_meta"`
	Operator     string           `yaml:"operator"`
	Value        interface{}      `yaml:"value"`
}

type yamlPropertyMeta struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
}

// parseYAMLBytes returns the root content node of a YAML or JSON document.
func parseYAMLBytes(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	return doc.Content[0], nil
}

// isNull reports whether a node is absent or an explicit null.
func isNull(node *yaml.Node) bool {
	return node == nil || node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}
