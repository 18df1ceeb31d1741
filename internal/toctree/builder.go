package toctree

import (
	"regexp"
	"strings"
)

// PathSeparator joins ancestor heading titles in a Block's HeaderPath.
const PathSeparator = " > "

// Titles assigned to blocks that don't start with a heading line.
const (
	PreambleTitle = "(preamble)"
	EmptyTitle    = "(empty)"
	RootTitle     = "ROOT"
)

var headingRe = regexp.MustCompile(`^(#+)\s+(.*?)\s*$`)

// Block is one markdown-derived unit: content that begins with an optional
// heading line followed by body text, plus the ancestor heading path the
// splitter recorded for it.
type Block struct {
	Content    string
	HeaderPath string
}

// Build converts an ordered sequence of blocks into a TOC tree rooted at a
// synthetic "ROOT" node. Building twice from the same blocks yields
// structurally identical trees.
func Build(blocks []Block) *Node {
	root := &Node{Title: RootTitle, Children: []*Node{}}

	for _, b := range blocks {
		level, title, body := splitHeading(b.Content)

		path := append(parseHeaderPath(b.HeaderPath), title)

		cur := root
		for _, t := range path {
			cur = cur.child(t)
		}
		cur.Sections = append(cur.Sections, Section{
			HeadingLevel: level,
			SectionText:  body,
		})
	}

	return root
}

// splitHeading parses the first line of a block. Blocks that don't open
// with a markdown heading degrade to preamble nodes rather than failing.
func splitHeading(content string) (level *int, title, body string) {
	lines := strings.Split(content, "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, EmptyTitle, ""
	}

	m := headingRe.FindStringSubmatch(lines[0])
	if m == nil {
		return nil, PreambleTitle, strings.TrimSpace(content)
	}

	n := len(m[1])
	return &n, strings.TrimSpace(m[2]), strings.TrimSpace(strings.Join(lines[1:], "\n"))
}

// parseHeaderPath converts a separator-delimited ancestor path string to a
// slice of titles. Leading/trailing separators are tolerated.
func parseHeaderPath(path string) []string {
	if path == "" || path == PathSeparator {
		return nil
	}
	path = strings.TrimPrefix(path, PathSeparator)
	path = strings.TrimSuffix(path, PathSeparator)

	var out []string
	for _, p := range strings.Split(path, PathSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
