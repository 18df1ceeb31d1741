// Package pipeline runs the synchronous document flow: convert to markdown,
// build and clean the TOC tree, then transform it into a mindmap. Every
// stage persists its artifact before the next runs, so a failed transform
// still leaves the parsed markdown and TOC tree on disk.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mindmapd/internal/history"
	"mindmapd/internal/mindmap"
	"mindmapd/internal/parser"
	"mindmapd/internal/toctree"
)

// Transformer turns a cleaned TOC tree into a mindmap, persisting the
// result (and any intermediate chunk artifacts) under outputFile.
type Transformer interface {
	Transform(ctx context.Context, tree *toctree.CleanedNode, outputFile string) (*mindmap.Node, error)
}

// Pipeline processes one document at a time.
type Pipeline struct {
	store         *history.Store
	transformer   Transformer
	maxSectionLen int
	log           *slog.Logger
}

// Result describes a processed document.
type Result struct {
	ID      string        `json:"id"`
	Mindmap *mindmap.Node `json:"mindmap"`
}

func New(store *history.Store, transformer Transformer, maxSectionLen int, log *slog.Logger) *Pipeline {
	if maxSectionLen <= 0 {
		maxSectionLen = toctree.DefaultMaxSectionLen
	}
	return &Pipeline{
		store:         store,
		transformer:   transformer,
		maxSectionLen: maxSectionLen,
		log:           log,
	}
}

// Process converts an uploaded file, persists it and its derived
// artifacts under a new document folder, and transforms it into a
// mindmap. A failure before the transform step removes the folder again,
// so early errors leave no orphan folders behind.
func (p *Pipeline) Process(ctx context.Context, filename string, file io.Reader) (Result, error) {
	converter, err := parser.ForFile(filename)
	if err != nil {
		return Result{}, err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	markdown, err := converter.Convert(bytes.NewReader(data), filename)
	if err != nil {
		return Result{}, fmt.Errorf("convert %s: %w", filename, err)
	}

	id, err := p.store.Create()
	if err != nil {
		return Result{}, err
	}
	discard := func() { _ = os.RemoveAll(p.store.Dir(id)) }

	// The upload itself, under its original name.
	if err := os.WriteFile(p.store.Path(id, filename), data, 0o644); err != nil {
		discard()
		return Result{}, fmt.Errorf("write upload: %w", err)
	}
	meta := history.Metadata{
		ID:           id,
		DocumentName: filename,
		FileType:     filepath.Ext(filename),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.store.WriteMetadata(meta); err != nil {
		discard()
		return Result{}, err
	}
	if err := os.WriteFile(p.store.Path(id, history.MarkdownFile), []byte(markdown), 0o644); err != nil {
		discard()
		return Result{}, fmt.Errorf("write markdown: %w", err)
	}

	blocks := parser.SplitBlocks(markdown)
	tree := toctree.Build(blocks)
	if err := writeJSON(p.store.Path(id, history.TocFile), tree); err != nil {
		discard()
		return Result{}, err
	}
	p.log.Info("toc tree built", "doc_id", id, "blocks", len(blocks))

	cleaned := toctree.Clean(tree, p.maxSectionLen)
	mm, err := p.transformer.Transform(ctx, cleaned, p.store.Path(id, history.MindmapFile))
	if err != nil {
		// The markdown and TOC artifacts stay on disk for inspection
		// and retry.
		return Result{ID: id}, fmt.Errorf("transform: %w", err)
	}

	meta.HasMindmap = true
	if err := p.store.WriteMetadata(meta); err != nil {
		return Result{}, err
	}
	p.log.Info("document processed", "doc_id", id, "name", filename)
	return Result{ID: id, Mindmap: mm}, nil
}

// Mindmap loads a document's persisted mindmap and normalizes it for
// display.
func (p *Pipeline) Mindmap(id string) (*mindmap.Node, error) {
	data, err := p.store.ReadArtifact(id, history.MindmapFile)
	if err != nil {
		return nil, err
	}
	var node mindmap.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode mindmap: %w", err)
	}
	return mindmap.CollapseRootChain(&node), nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
