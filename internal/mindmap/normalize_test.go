package mindmap

import (
	"reflect"
	"testing"
)

func TestCollapseRootChain_PromotesThroughChain(t *testing.T) {
	// ROOT -> A -> B -> C where only C branches.
	c := &Node{
		Title:       "🧭 Guide",
		Question:    "What does the guide cover?",
		Description: "A long description that should win over shorter ones",
		Keywords:    []string{"guide", "overview"},
		Children: []*Node{
			{Title: "📝 X"},
			{Title: "✅ Y"},
			{Title: "⚠️ Z"},
		},
	}
	b := &Node{Title: "", Children: []*Node{c}}
	a := &Node{Title: "", Children: []*Node{b}}
	root := &Node{Title: "My Document Mind Map", Children: []*Node{a}}

	got := CollapseRootChain(root)

	if got != root {
		t.Fatalf("expected in-place mutation of the same node")
	}
	if got.Title != "🧭 Guide" {
		t.Errorf("expected generic root title replaced, got %q", got.Title)
	}
	if got.Question != "What does the guide cover?" {
		t.Errorf("question not adopted: %q", got.Question)
	}
	if got.Description != "A long description that should win over shorter ones" {
		t.Errorf("description not adopted: %q", got.Description)
	}
	if len(got.Children) != 3 {
		t.Fatalf("expected 3 children after collapse, got %d", len(got.Children))
	}
	titles := []string{got.Children[0].Title, got.Children[1].Title, got.Children[2].Title}
	if !reflect.DeepEqual(titles, []string{"📝 X", "✅ Y", "⚠️ Z"}) {
		t.Errorf("children lost or reordered: %v", titles)
	}
}

func TestCollapseRootChain_KeepsMeaningfulRootTitle(t *testing.T) {
	root := &Node{
		Title: "📄 Benefits",
		Children: []*Node{
			{Title: "🏥 Plans", Children: []*Node{{Title: "💰 HSA"}, {Title: "🩺 PPO"}}},
		},
	}

	CollapseRootChain(root)

	if root.Title != "📄 Benefits" {
		t.Errorf("meaningful root title should be kept, got %q", root.Title)
	}
	if len(root.Children) != 2 {
		t.Errorf("expected collapse to continue to the branch, got %d children", len(root.Children))
	}
}

func TestCollapseRootChain_MergeRules(t *testing.T) {
	root := &Node{
		Title:       "📄 Doc",
		Description: "short",
		Question:    "existing?",
		Keywords:    []string{"b", "a"},
		Children: []*Node{
			{
				Title:       "🧭 Child",
				Description: "a strictly longer description",
				Question:    "child question ignored?",
				Keywords:    []string{"a", "c"},
				Children:    []*Node{{Title: "📝 L"}, {Title: "✅ R"}},
			},
		},
	}

	CollapseRootChain(root)

	if root.Description != "a strictly longer description" {
		t.Errorf("longer child description should win: %q", root.Description)
	}
	if root.Question != "existing?" {
		t.Errorf("existing root question should be kept: %q", root.Question)
	}
	if !reflect.DeepEqual(root.Keywords, []string{"a", "b", "c"}) {
		t.Errorf("keyword union wrong: %v", root.Keywords)
	}
}

func TestCollapseRootChain_ConvergesOrTerminates(t *testing.T) {
	// A chain longer than the iteration cap must terminate, not loop.
	leaf := &Node{Title: "🌿 Leaf"}
	cur := leaf
	for i := 0; i < maxCollapseIterations+5; i++ {
		cur = &Node{Title: "", Children: []*Node{cur}}
	}

	got := CollapseRootChain(cur)

	if len(got.Children) > 1 {
		t.Fatalf("unexpected branch: %d children", len(got.Children))
	}
	// Cap hit is acceptable: what matters is it returned.
}

func TestCollapseRootChain_Idempotent(t *testing.T) {
	build := func() *Node {
		return &Node{
			Title: "root",
			Children: []*Node{
				{Title: "🧭 Mid", Keywords: []string{"k"}, Children: []*Node{
					{Title: "📝 X"}, {Title: "✅ Y"},
				}},
			},
		}
	}

	once := CollapseRootChain(build())
	twice := CollapseRootChain(CollapseRootChain(build()))

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second application changed the tree")
	}
}

func TestCollapseRootChain_ZeroAndMultiChildrenNoOp(t *testing.T) {
	empty := &Node{Title: "📄 Doc"}
	if got := CollapseRootChain(empty); len(got.Children) != 0 {
		t.Errorf("empty root changed")
	}

	branched := &Node{Title: "📄 Doc", Children: []*Node{{Title: "📝 A"}, {Title: "✅ B"}}}
	CollapseRootChain(branched)
	if len(branched.Children) != 2 || branched.Children[0].Title != "📝 A" {
		t.Errorf("already-branching root changed")
	}
}
