package mindmap

import (
	"sort"
	"strings"
)

// maxCollapseIterations bounds the root-chain loop so malformed (cyclic)
// input stops collapsing instead of looping forever.
const maxCollapseIterations = 10

// Generic placeholder titles that lose to a child's title during collapse.
var genericTitles = map[string]bool{
	"my document mind map": true,
	"document mind map":    true,
	"mind map":             true,
	"root":                 true,
}

// CollapseRootChain removes the degenerate single-child prefix at the top
// of the tree: while the root has exactly one child, the child is promoted
// into the root's position, merging metadata along the way. Deeper
// single-child chains are left alone; only the root-to-first-branch
// straight line is collapsed.
//
// This is the one stage that mutates its input in place; it returns the
// same node it receives. Idempotent: a second application is a no-op.
func CollapseRootChain(node *Node) *Node {
	if node == nil {
		return nil
	}

	for i := 0; i < maxCollapseIterations; i++ {
		if len(node.Children) != 1 {
			break
		}
		promote(node, node.Children[0])
	}

	return node
}

// promote folds child into node and adopts its children.
func promote(node, child *Node) {
	rootTitle := strings.TrimSpace(node.Title)
	if rootTitle == "" || genericTitles[strings.ToLower(rootTitle)] {
		node.Title = strings.TrimSpace(child.Title)
	}

	if child.Description != "" {
		if node.Description == "" || len(child.Description) > len(node.Description) {
			node.Description = child.Description
		}
	}

	if node.Question == "" && child.Question != "" {
		node.Question = child.Question
	}

	if len(node.Keywords) > 0 || len(child.Keywords) > 0 {
		node.Keywords = unionKeywords(node.Keywords, child.Keywords)
	}

	node.Children = child.Children
}

// unionKeywords merges two keyword sets, dropping duplicates. Sorted so
// the result is stable regardless of input order.
func unionKeywords(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, kw := range append(append([]string{}, a...), b...) {
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}
