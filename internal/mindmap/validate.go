package mindmap

import (
	"fmt"
	"strings"
	"unicode"
)

// Structural limits the transformation contract promises. The model is
// told to honor them; Validate checks the returned tree actually does.
const (
	MaxDepth       = 8 // edges below root
	MaxRootFanout  = 8
	MaxFanout      = 5
	MaxTitleWords  = 3
	MaxDescription = 200
)

// Validate checks the structural contract of a transformed tree: fan-out
// and depth limits, duplicate sibling titles, and the icon+space+1-3-words
// title shape. A violation is a recoverable condition for the caller
// (retry through the chunked path), not a panic.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("mindmap: nil root")
	}
	if len(root.Children) > MaxRootFanout {
		return fmt.Errorf("mindmap: root has %d children, max %d", len(root.Children), MaxRootFanout)
	}
	if err := checkTitle(root.Title); err != nil {
		return fmt.Errorf("mindmap: root: %w", err)
	}
	if err := checkSiblings(root.Children); err != nil {
		return err
	}
	for _, c := range root.Children {
		if err := validateNode(c, 1); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(node *Node, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("mindmap: %q exceeds max depth %d", node.Title, MaxDepth)
	}
	if err := checkTitle(node.Title); err != nil {
		return fmt.Errorf("mindmap: %q: %w", node.Title, err)
	}
	if len(node.Children) > MaxFanout {
		return fmt.Errorf("mindmap: %q has %d children, max %d", node.Title, len(node.Children), MaxFanout)
	}
	if err := checkSiblings(node.Children); err != nil {
		return err
	}
	for _, c := range node.Children {
		if err := validateNode(c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func checkSiblings(children []*Node) error {
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		key := strings.ToLower(strings.TrimSpace(c.Title))
		if seen[key] {
			return fmt.Errorf("mindmap: duplicate sibling title %q", c.Title)
		}
		seen[key] = true
	}
	return nil
}

// checkTitle enforces "icon + one space + 1-3 words": a leading
// non-alphanumeric icon rune, a single space, then at most three words.
func checkTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("empty title")
	}

	runes := []rune(title)
	if unicode.IsLetter(runes[0]) || unicode.IsDigit(runes[0]) {
		return fmt.Errorf("title missing leading icon")
	}

	rest := strings.TrimLeftFunc(title, func(r rune) bool {
		return !unicode.IsSpace(r) && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return fmt.Errorf("title has no text after icon")
	}

	if words := len(strings.Fields(rest)); words > MaxTitleWords {
		return fmt.Errorf("title has %d words after icon, max %d", words, MaxTitleWords)
	}
	if strings.HasSuffix(rest, ":") {
		return fmt.Errorf("title ends with a colon")
	}
	return nil
}
