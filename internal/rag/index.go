// Package rag builds per-document vector indexes over parsed markdown and
// answers questions grounded in the retrieved passages.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

// IndexFile is the name of the persisted index inside a document folder.
const IndexFile = "rag_index.json"

// Passage size bounds, in tokens. Paragraphs are grouped until a passage
// reaches the target; a single oversized paragraph becomes its own passage.
const (
	passageTokenTarget = 512
	minPassageChars    = 20
)

// Embedder converts text into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// TokenCounter reports how many tokens a piece of text costs.
type TokenCounter interface {
	Count(text string) int
}

// Passage is one retrievable unit of a document.
type Passage struct {
	Heading string    `json:"heading,omitempty"`
	Text    string    `json:"text"`
	Vector  []float32 `json:"vector"`
}

// Index holds the embedded passages of a single document.
type Index struct {
	Passages []Passage `json:"passages"`
}

// Match is a retrieved passage with its similarity score.
type Match struct {
	Passage Passage
	Score   float32
}

// BuildIndex splits parsed markdown into passages, embeds them, and returns
// the in-memory index.
func BuildIndex(ctx context.Context, markdown string, embedder Embedder, counter TokenCounter) (*Index, error) {
	passages := SplitPassages(markdown, counter)
	if len(passages) == 0 {
		return &Index{}, nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed passages: %w", err)
	}
	if len(vectors) != len(passages) {
		return nil, fmt.Errorf("embedding count mismatch: %d passages, %d vectors", len(passages), len(vectors))
	}
	for i := range passages {
		passages[i].Vector = vectors[i]
	}
	return &Index{Passages: passages}, nil
}

// LoadIndex reads a persisted index from disk.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &idx, nil
}

// Save persists the index to disk.
func (idx *Index) Save(path string) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Search embeds the query and returns the topK most similar passages,
// best first. Passages with non-positive similarity are dropped.
func (idx *Index) Search(ctx context.Context, embedder Embedder, query string, topK int) ([]Match, error) {
	if len(idx.Passages) == 0 || topK <= 0 {
		return nil, nil
	}
	vectors, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	return idx.searchVector(vectors[0], topK), nil
}

func (idx *Index) searchVector(query []float32, topK int) []Match {
	matches := make([]Match, 0, len(idx.Passages))
	for _, p := range idx.Passages {
		score := cosineSimilarity(query, p.Vector)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{Passage: p, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// SplitPassages breaks markdown into heading-scoped passages of bounded
// token size. Paragraphs under the same heading are grouped until the
// passage reaches the token target.
func SplitPassages(markdown string, counter TokenCounter) []Passage {
	var passages []Passage
	var heading string
	var current []string
	var currentTokens int

	flush := func() {
		if len(current) == 0 {
			return
		}
		text := strings.Join(current, "\n\n")
		if len(strings.TrimSpace(text)) >= minPassageChars {
			if heading != "" {
				text = heading + "\n\n" + text
			}
			passages = append(passages, Passage{Heading: heading, Text: text})
		}
		current = nil
		currentTokens = 0
	}

	for _, para := range strings.Split(markdown, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if strings.HasPrefix(para, "#") {
			flush()
			heading = para
			continue
		}
		paraTokens := counter.Count(para)
		if currentTokens > 0 && currentTokens+paraTokens > passageTokenTarget {
			flush()
		}
		current = append(current, para)
		currentTokens += paraTokens
	}
	flush()
	return passages
}
