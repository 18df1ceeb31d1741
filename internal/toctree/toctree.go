// Package toctree builds and cleans the heading-hierarchy tree extracted
// from a parsed document, before any LLM restructuring happens.
package toctree

// Node is a recursive TOC tree node. Children are keyed by title within
// their parent: walking the same heading path twice resolves to the same
// node instead of creating a duplicate.
type Node struct {
	Title    string    `json:"title"`
	Children []*Node   `json:"children"`
	Sections []Section `json:"sections,omitempty"`
}

// Section is one block of body text that resolved to a node's path. A node
// accumulates one Section per block, so repeated headings keep all their
// text in order.
type Section struct {
	HeadingLevel *int   `json:"heading_level"`
	SectionText  string `json:"section_text"`
}

// CleanedNode is the cleaned form of Node: sections reduced to bare
// strings, low-signal entries removed, oversized entries truncated. A node
// with no surviving sections omits the field entirely.
type CleanedNode struct {
	Title    string         `json:"title"`
	Sections []string       `json:"sections,omitempty"`
	Children []*CleanedNode `json:"children,omitempty"`
}

func (n *Node) child(title string) *Node {
	for _, c := range n.Children {
		if c.Title == title {
			return c
		}
	}
	c := &Node{Title: title, Children: []*Node{}}
	n.Children = append(n.Children, c)
	return c
}
