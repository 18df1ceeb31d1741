package toctree

import (
	"reflect"
	"testing"
)

func TestBuild_NestedPaths(t *testing.T) {
	blocks := []Block{
		{Content: "# Intro\nSome intro text."},
		{Content: "## Scope\nWhat this covers.", HeaderPath: "Intro"},
		{Content: "## Audience\nWho should read it.", HeaderPath: "Intro"},
		{Content: "### Engineers\nThe primary audience.", HeaderPath: "Intro > Audience"},
	}

	root := Build(blocks)

	if root.Title != RootTitle {
		t.Fatalf("expected root title %q, got %q", RootTitle, root.Title)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 top-level child, got %d", len(root.Children))
	}

	intro := root.Children[0]
	if intro.Title != "Intro" {
		t.Errorf("expected child 'Intro', got %q", intro.Title)
	}
	if len(intro.Sections) != 1 || intro.Sections[0].SectionText != "Some intro text." {
		t.Errorf("unexpected intro sections: %+v", intro.Sections)
	}
	if len(intro.Children) != 2 {
		t.Fatalf("expected 2 children under Intro, got %d", len(intro.Children))
	}
	if intro.Children[0].Title != "Scope" || intro.Children[1].Title != "Audience" {
		t.Errorf("children out of order: %q, %q", intro.Children[0].Title, intro.Children[1].Title)
	}

	audience := intro.Children[1]
	if len(audience.Children) != 1 || audience.Children[0].Title != "Engineers" {
		t.Errorf("expected 'Engineers' under Audience, got %+v", audience.Children)
	}

	lvl := audience.Children[0].Sections[0].HeadingLevel
	if lvl == nil || *lvl != 3 {
		t.Errorf("expected heading level 3, got %v", lvl)
	}
}

func TestBuild_RepeatedHeadingAccumulatesSections(t *testing.T) {
	blocks := []Block{
		{Content: "# Notes\nfirst pass"},
		{Content: "# Notes\nsecond pass"},
	}

	root := Build(blocks)

	if len(root.Children) != 1 {
		t.Fatalf("repeated heading duplicated node: %d children", len(root.Children))
	}
	notes := root.Children[0]
	if len(notes.Sections) != 2 {
		t.Fatalf("expected 2 accumulated sections, got %d", len(notes.Sections))
	}
	if notes.Sections[0].SectionText != "first pass" || notes.Sections[1].SectionText != "second pass" {
		t.Errorf("sections out of order: %+v", notes.Sections)
	}
}

func TestBuild_PreambleAndEmptyBlocks(t *testing.T) {
	blocks := []Block{
		{Content: "This document has no heading on its first block."},
		{Content: ""},
	}

	root := Build(blocks)

	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	pre := root.Children[0]
	if pre.Title != PreambleTitle {
		t.Errorf("expected preamble title, got %q", pre.Title)
	}
	if pre.Sections[0].HeadingLevel != nil {
		t.Errorf("preamble should have nil heading level")
	}
	if root.Children[1].Title != EmptyTitle {
		t.Errorf("expected empty title, got %q", root.Children[1].Title)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	blocks := []Block{
		{Content: "# A\nbody a"},
		{Content: "## B\nbody b", HeaderPath: "A"},
		{Content: "## B\nbody b again", HeaderPath: "A"},
		{Content: "no heading here"},
	}

	first := Build(blocks)
	second := Build(blocks)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("building twice from the same blocks produced different trees")
	}
}

func TestParseHeaderPath_SeparatorHandling(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{PathSeparator, nil},
		{"A", []string{"A"}},
		{"A > B > C", []string{"A", "B", "C"}},
		{" > A > B > ", []string{"A", "B"}},
	}
	for _, tc := range cases {
		got := parseHeaderPath(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseHeaderPath(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
