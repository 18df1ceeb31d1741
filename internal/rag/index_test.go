package rag

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

// wordCounter approximates token counts by whitespace-separated words.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

// stubEmbedder maps each text to a fixed vector keyed by a contained term,
// so similarity in tests is fully deterministic.
type stubEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	calls    int
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.fallback
		for term, vec := range e.vectors {
			if strings.Contains(strings.ToLower(text), term) {
				out[i] = vec
				break
			}
		}
	}
	return out, nil
}

func TestSplitPassages_HeadingScoped(t *testing.T) {
	markdown := "# Guide\n\nThis paragraph introduces the overall guide contents.\n\n## Install\n\nRun the installer and follow the prompts until completion.\n\nReboot the machine afterwards to load the new kernel modules."
	passages := SplitPassages(markdown, wordCounter{})

	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d: %+v", len(passages), passages)
	}
	if passages[0].Heading != "# Guide" {
		t.Errorf("first heading = %q", passages[0].Heading)
	}
	if passages[1].Heading != "## Install" {
		t.Errorf("second heading = %q", passages[1].Heading)
	}
	if !strings.Contains(passages[1].Text, "Reboot the machine") {
		t.Errorf("paragraphs under one heading should share a passage: %q", passages[1].Text)
	}
	if !strings.HasPrefix(passages[1].Text, "## Install") {
		t.Errorf("passage text should carry its heading: %q", passages[1].Text)
	}
}

func TestSplitPassages_TokenBound(t *testing.T) {
	para := strings.Repeat("word ", 300)
	markdown := "# Big\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)
	passages := SplitPassages(markdown, wordCounter{})

	// 300-word paragraphs against a 512-token target: no two fit together,
	// so each becomes its own passage.
	if len(passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(passages))
	}
}

func TestSplitPassages_DropsTinyFragments(t *testing.T) {
	passages := SplitPassages("# H\n\nok\n\n", wordCounter{})
	if len(passages) != 0 {
		t.Fatalf("expected no passages for tiny content, got %d", len(passages))
	}
}

func TestIndex_SearchRanksBySimilarity(t *testing.T) {
	embedder := &stubEmbedder{
		vectors: map[string][]float32{
			"kernel":  {1, 0, 0},
			"install": {0.9, 0.1, 0},
			"guide":   {0, 0, 1},
		},
		fallback: []float32{0, 1, 0},
	}
	markdown := "# Guide\n\nThis paragraph introduces the overall guide contents.\n\n## Install\n\nThe install procedure loads several kernel modules at boot."
	idx, err := BuildIndex(context.Background(), markdown, embedder, wordCounter{})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if len(idx.Passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(idx.Passages))
	}

	matches, err := idx.Search(context.Background(), embedder, "how does the kernel install work", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	if !strings.Contains(matches[0].Passage.Text, "kernel modules") {
		t.Errorf("best match should be the kernel passage, got %q", matches[0].Passage.Text)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted by score: %v", matches)
		}
	}
}

func TestIndex_SaveLoadRoundtrip(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float32{0.5, 0.5, 0}}
	idx, err := BuildIndex(context.Background(), "# Doc\n\nA reasonably sized paragraph about nothing in particular.", embedder, wordCounter{})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	path := filepath.Join(t.TempDir(), IndexFile)
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if len(loaded.Passages) != len(idx.Passages) {
		t.Fatalf("passage count changed across save/load: %d vs %d", len(loaded.Passages), len(idx.Passages))
	}
	if loaded.Passages[0].Text != idx.Passages[0].Text {
		t.Errorf("passage text changed across save/load")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors: got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("length mismatch should score zero, got %v", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors should score zero, got %v", got)
	}
}
