package ast

import "strings"

// ConditionType discriminates condition nodes.
type ConditionType string

const (
	ConditionTypeGroup ConditionType = "group" // combinator over children
	ConditionTypeLeaf  ConditionType = "leaf"  // field op value
)

// Combinator joins the children of a group.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

// ParseCombinator accepts "and"/"or" in any case.
func ParseCombinator(s string) (Combinator, bool) {
	switch Combinator(strings.ToLower(strings.TrimSpace(s))) {
	case CombinatorAnd:
		return CombinatorAnd, true
	case CombinatorOr:
		return CombinatorOr, true
	}
	return "", false
}

// Operator is a leaf comparison operator.
type Operator string

const (
	OperatorEquals                   Operator = "equals"
	OperatorDoesNotEqual             Operator = "does_not_equal"
	OperatorContains                 Operator = "contains"
	OperatorDoesNotContain           Operator = "does_not_contain"
	OperatorStartsWith               Operator = "starts_with"
	OperatorEndsWith                 Operator = "ends_with"
	OperatorIsEmpty                  Operator = "is_empty"
	OperatorIsNotEmpty               Operator = "is_not_empty"
	OperatorGreaterThan              Operator = "greater_than"
	OperatorGreaterThanOrEqual       Operator = "greater_than_or_equal_to"
	OperatorLessThan                 Operator = "less_than"
	OperatorLessThanOrEqual          Operator = "less_than_or_equal_to"
	OperatorBefore                   Operator = "before"
	OperatorAfter                    Operator = "after"
	OperatorOnOrBefore               Operator = "on_or_before"
	OperatorOnOrAfter                Operator = "on_or_after"
	OperatorContentLengthEquals      Operator = "content_length_equals"
	OperatorContentLengthGreaterThan Operator = "content_length_greater_than"
	OperatorContentLengthLessThan    Operator = "content_length_less_than"
)

var operatorAliases = map[string]Operator{
	"notequals":          OperatorDoesNotEqual,
	"not_equals":         OperatorDoesNotEqual,
	"notcontains":        OperatorDoesNotContain,
	"not_contains":       OperatorDoesNotContain,
	"startswith":         OperatorStartsWith,
	"endswith":           OperatorEndsWith,
	"isempty":            OperatorIsEmpty,
	"isnotempty":         OperatorIsNotEmpty,
	"greaterthan":        OperatorGreaterThan,
	"greaterthanorequal": OperatorGreaterThanOrEqual,
	"lessthan":           OperatorLessThan,
	"lessthanorequal":    OperatorLessThanOrEqual,
	"onorbefore":         OperatorOnOrBefore,
	"onorafter":          OperatorOnOrAfter,
}

// Operators returns every canonical operator.
func Operators() []Operator {
	return []Operator{
		OperatorEquals, OperatorDoesNotEqual, OperatorContains, OperatorDoesNotContain,
		OperatorStartsWith, OperatorEndsWith, OperatorIsEmpty, OperatorIsNotEmpty,
		OperatorGreaterThan, OperatorGreaterThanOrEqual, OperatorLessThan, OperatorLessThanOrEqual,
		OperatorBefore, OperatorAfter, OperatorOnOrBefore, OperatorOnOrAfter,
		OperatorContentLengthEquals, OperatorContentLengthGreaterThan, OperatorContentLengthLessThan,
	}
}

// IsKnown reports whether o is a canonical operator.
func (o Operator) IsKnown() bool {
	for _, known := range Operators() {
		if o == known {
			return true
		}
	}
	return false
}

// ParseOperator resolves canonical names and camelCase aliases such as "notEquals".
func ParseOperator(s string) (Operator, bool) {
	s = strings.TrimSpace(s)
	if op := Operator(s); op.IsKnown() {
		return op, true
	}
	if op, ok := operatorAliases[strings.ToLower(s)]; ok {
		return op, true
	}
	return Operator(s), false
}

// FieldRef points a leaf at another field. Type is the field type observed when the
// condition was authored, so retyped fields can be detected.
type FieldRef struct {
	ID   string
	Type FieldType
}

// ConditionNode is either a group or a leaf.
type ConditionNode struct {
	Type ConditionType

	// Group
	Combinator Combinator
	Children   []*ConditionNode

	// Leaf
	Identifier string // Optional authoring id
	Field      FieldRef
	Operator   Operator
	Value      interface{} // Comparison value, shaped like the referenced field's value

	Location Location
}

// Group builds a group node.
func Group(combinator Combinator, children ...*ConditionNode) *ConditionNode {
	return &ConditionNode{
		Type:       ConditionTypeGroup,
		Combinator: combinator,
		Children:   children,
	}
}

// And builds an AND group.
func And(children ...*ConditionNode) *ConditionNode {
	return Group(CombinatorAnd, children...)
}

// Or builds an OR group.
func Or(children ...*ConditionNode) *ConditionNode {
	return Group(CombinatorOr, children...)
}

// Leaf builds a leaf node.
func Leaf(ref FieldRef, op Operator, value interface{}) *ConditionNode {
	return &ConditionNode{
		Type:     ConditionTypeLeaf,
		Field:    ref,
		Operator: op,
		Value:    value,
	}
}

// IsGroup returns true for group nodes.
func (c *ConditionNode) IsGroup() bool {
	return c != nil && c.Type == ConditionTypeGroup
}

// IsLeaf returns true for leaf nodes.
func (c *ConditionNode) IsLeaf() bool {
	return c != nil && c.Type == ConditionTypeLeaf
}

// LeafCount returns the number of leaves in the tree. Cyclic back-edges are not
// followed.
func (c *ConditionNode) LeafCount() int {
	count := 0
	Walk(c, func(node *ConditionNode, _ int) bool {
		if node.IsLeaf() {
			count++
		}
		return true
	})
	return count
}
