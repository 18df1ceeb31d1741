// Package mindmap holds the LLM-restructured concept tree and its
// deterministic post-processing.
package mindmap

// Node is one concept in the mindmap. The root is the same shape with no
// implicit parent. Titles follow the "icon + space + 1-3 words"
// convention; the transformation prompt demands it and Validate checks it.
type Node struct {
	Title       string   `json:"title"`
	Question    string   `json:"question,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Children    []*Node  `json:"children,omitempty"`
}
