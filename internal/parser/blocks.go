package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"mindmapd/internal/toctree"
)

// SplitBlocks divides a markdown document into heading-path blocks: each
// block is one heading line plus the body under it, tagged with the
// ancestor heading titles joined by the TOC path separator. Text before
// the first heading becomes a block with no heading line and an empty
// path.
func SplitBlocks(markdown string) []toctree.Block {
	src := []byte(markdown)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	type frame struct {
		title string
		level int
	}

	var (
		blocks  []toctree.Block
		stack   []frame
		current strings.Builder
		path    string
		open    bool
	)

	flush := func() {
		content := strings.TrimRight(current.String(), "\n")
		if open || strings.TrimSpace(content) != "" {
			blocks = append(blocks, toctree.Block{Content: content, HeaderPath: path})
		}
		current.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			flush()

			for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			titles := make([]string, 0, len(stack))
			for _, f := range stack {
				titles = append(titles, f.title)
			}
			path = strings.Join(titles, toctree.PathSeparator)

			title := string(h.Text(src))
			stack = append(stack, frame{title: title, level: h.Level})

			current.WriteString(strings.Repeat("#", h.Level) + " " + title + "\n")
			open = true
			continue
		}

		if t := extractText(n, src); t != "" {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(t + "\n")
		}
	}
	flush()

	return blocks
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		var buf bytes.Buffer
		for i := 0; i < n.Lines().Len(); i++ {
			line := n.Lines().At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	// Container blocks (lists, quotes) keep their text in descendants.
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := extractText(c, src); t != "" {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(t)
		}
	}
	return strings.TrimSpace(buf.String())
}
