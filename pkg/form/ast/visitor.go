package ast

// WalkFunc is called for each node reached by Walk. Returning false skips the node's
// children.
type WalkFunc func(node *ConditionNode, depth int) bool

// Walk visits the tree depth-first in document order. The root has depth 1. A node
// already on the current path is not entered twice, so malformed trees built in code
// with cycles terminate.
func Walk(root *ConditionNode, fn WalkFunc) {
	if root == nil {
		return
	}
	onPath := make(map[*ConditionNode]bool)
	walkCondition(root, 1, onPath, fn)
}

func walkCondition(node *ConditionNode, depth int, onPath map[*ConditionNode]bool, fn WalkFunc) {
	if node == nil || onPath[node] {
		return
	}
	if !fn(node, depth) {
		return
	}
	onPath[node] = true
	for _, child := range node.Children {
		walkCondition(child, depth+1, onPath, fn)
	}
	delete(onPath, node)
}

// Depth returns the maximum nesting depth of the tree. A single leaf has depth 1.
func Depth(root *ConditionNode) int {
	deepest := 0
	Walk(root, func(_ *ConditionNode, depth int) bool {
		if depth > deepest {
			deepest = depth
		}
		return true
	})
	return deepest
}

// References returns the distinct field ids referenced by leaves, in first-seen order.
func References(root *ConditionNode) []string {
	var refs []string
	seen := make(map[string]bool)
	Walk(root, func(node *ConditionNode, _ int) bool {
		if node.IsLeaf() && !seen[node.Field.ID] {
			seen[node.Field.ID] = true
			refs = append(refs, node.Field.ID)
		}
		return true
	})
	return refs
}

// HasCycle reports whether any node is reachable from itself. Trees produced by the
// parser never contain cycles; forms assembled in code might.
func HasCycle(root *ConditionNode) bool {
	return hasCycle(root, make(map[*ConditionNode]bool))
}

func hasCycle(node *ConditionNode, onPath map[*ConditionNode]bool) bool {
	if node == nil {
		return false
	}
	if onPath[node] {
		return true
	}
	onPath[node] = true
	for _, child := range node.Children {
		if hasCycle(child, onPath) {
			return true
		}
	}
	delete(onPath, node)
	return false
}
