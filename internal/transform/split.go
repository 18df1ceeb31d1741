package transform

import (
	"mindmapd/internal/toctree"
	"mindmapd/internal/tokens"
)

// Chunk is a partial view of a cleaned tree restricted to a subset of its
// root children. Root-level metadata is replicated into every chunk so
// each LLM call sees the document context. Chunks are transient: they
// exist only while an oversized document is being processed.
type Chunk struct {
	Title    string                 `json:"title"`
	Sections []string               `json:"sections,omitempty"`
	Children []*toctree.CleanedNode `json:"children,omitempty"`
}

// SplitTree partitions the tree's root children into token-bounded chunks,
// in original order. Concatenating the chunks' children reproduces the
// input children exactly.
//
// The budget is advisory per chunk, checked only before adding: a single
// child whose own cost exceeds the budget still lands alone in its own
// chunk rather than being split further or rejected.
func SplitTree(tree *toctree.CleanedNode, budget int, counter tokens.Counter) []Chunk {
	newChunk := func() Chunk {
		return Chunk{Title: tree.Title, Sections: tree.Sections}
	}
	baseCost := func(c Chunk) int {
		return counter.CountJSON(Chunk{Title: c.Title, Sections: c.Sections})
	}

	var chunks []Chunk
	current := newChunk()
	currentTokens := baseCost(current)

	for _, child := range tree.Children {
		childTokens := counter.CountJSON(child)

		if currentTokens+childTokens > budget && len(current.Children) > 0 {
			chunks = append(chunks, current)
			current = newChunk()
			currentTokens = baseCost(current)
		}

		current.Children = append(current.Children, child)
		currentTokens += childTokens
	}

	if len(current.Children) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}
