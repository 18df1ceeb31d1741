package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"mindmapd/internal/history"
	"mindmapd/internal/mindmap"
	"mindmapd/internal/toctree"
)

type stubTransformer struct {
	node  *mindmap.Node
	err   error
	trees []*toctree.CleanedNode
}

func (s *stubTransformer) Transform(_ context.Context, tree *toctree.CleanedNode, outputFile string) (*mindmap.Node, error) {
	s.trees = append(s.trees, tree)
	if s.err != nil {
		return nil, s.err
	}
	data, err := json.Marshal(s.node)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return nil, err
	}
	return s.node, nil
}

func testPipeline(t *testing.T, tr Transformer) (*Pipeline, *history.Store) {
	t.Helper()
	store, err := history.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, tr, 0, log), store
}

const sampleDoc = `# Release Notes

An introduction paragraph that is long enough to matter for the tree.

## Features

The new release adds streaming output and a smarter retry policy overall.
`

func TestProcess_WritesAllArtifacts(t *testing.T) {
	tr := &stubTransformer{node: &mindmap.Node{Title: "📄 Release Notes"}}
	p, store := testPipeline(t, tr)

	res, err := p.Process(context.Background(), "notes.md", strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.ID == "" || res.Mindmap == nil {
		t.Fatalf("incomplete result: %+v", res)
	}

	for _, name := range []string{history.MetadataFile, history.MarkdownFile, history.TocFile, history.MindmapFile} {
		if _, err := store.ReadArtifact(res.ID, name); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	// The upload itself is kept under its original name.
	original, err := store.ReadArtifact(res.ID, "notes.md")
	if err != nil {
		t.Errorf("missing original upload: %v", err)
	} else if string(original) != sampleDoc {
		t.Errorf("original upload content changed: %q", original)
	}

	meta, err := store.Get(res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !meta.HasMindmap || meta.DocumentName != "notes.md" || meta.FileType != ".md" {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	if len(tr.trees) != 1 {
		t.Fatalf("expected 1 transform call, got %d", len(tr.trees))
	}
	if tr.trees[0].Title != toctree.RootTitle {
		t.Errorf("transformer should receive the cleaned ROOT tree, got %q", tr.trees[0].Title)
	}
}

func TestProcess_TransformFailureKeepsTocArtifacts(t *testing.T) {
	tr := &stubTransformer{err: errors.New("model unavailable")}
	p, store := testPipeline(t, tr)

	res, err := p.Process(context.Background(), "notes.md", strings.NewReader(sampleDoc))
	if err == nil {
		t.Fatal("expected transform error")
	}
	if res.ID == "" {
		t.Fatal("failed transform should still report the document ID")
	}

	if _, err := store.ReadArtifact(res.ID, history.MarkdownFile); err != nil {
		t.Errorf("markdown artifact should survive transform failure: %v", err)
	}
	if _, err := store.ReadArtifact(res.ID, history.TocFile); err != nil {
		t.Errorf("toc artifact should survive transform failure: %v", err)
	}
	if _, err := store.ReadArtifact(res.ID, history.MindmapFile); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("mindmap artifact should be absent, got %v", err)
	}

	meta, err := store.Get(res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if meta.HasMindmap {
		t.Error("metadata should not claim a mindmap after failure")
	}
}

func TestProcess_UnsupportedExtension(t *testing.T) {
	p, _ := testPipeline(t, &stubTransformer{})
	if _, err := p.Process(context.Background(), "image.png", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestProcess_ConversionFailureLeavesNoFolder(t *testing.T) {
	baseDir := t.TempDir()
	store, err := history.NewStore(baseDir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(store, &stubTransformer{}, 0, log)

	// Not a PDF, so conversion fails before any folder is created.
	res, err := p.Process(context.Background(), "broken.pdf", strings.NewReader("not a pdf"))
	if err == nil {
		t.Fatal("expected conversion error")
	}
	if res.ID != "" {
		t.Errorf("failed conversion should not report an ID, got %q", res.ID)
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty storage dir, found %d entries", len(entries))
	}
}

func TestMindmap_NormalizesOnRead(t *testing.T) {
	tr := &stubTransformer{node: &mindmap.Node{
		Title: "Mind Map",
		Children: []*mindmap.Node{{
			Title:    "📄 Actual Doc",
			Children: []*mindmap.Node{{Title: "🔧 Part"}},
		}},
	}}
	p, _ := testPipeline(t, tr)

	res, err := p.Process(context.Background(), "doc.md", strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	node, err := p.Mindmap(res.ID)
	if err != nil {
		t.Fatalf("Mindmap: %v", err)
	}
	if node.Title != "📄 Actual Doc" {
		t.Errorf("generic root should collapse into its child, got %q", node.Title)
	}
}

func TestMindmap_NotFound(t *testing.T) {
	p, _ := testPipeline(t, &stubTransformer{})
	if _, err := p.Mindmap("no-such-id"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
