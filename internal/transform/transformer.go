// Package transform drives the LLM restructuring of a cleaned TOC tree
// into a mindmap, choosing between a single structured call and an
// iterative chunked merge based on token count.
package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mindmapd/internal/mindmap"
	"mindmapd/internal/toctree"
	"mindmapd/internal/tokens"
)

// Defaults for the token gates. The chunk budget is deliberately larger
// than a "small document" but smaller than the single-shot ceiling that
// triggers chunking in the first place.
const (
	DefaultTokenLimit  = 175000
	DefaultChunkBudget = 100000
)

// Caller is the structured-output LLM collaborator. IsCapacityError is the
// capability check for token/context-capacity failures, so provider error
// matching stays out of this package.
type Caller interface {
	CompleteStructured(ctx context.Context, model, system, user string, schema json.RawMessage) (json.RawMessage, error)
	IsCapacityError(err error) bool
}

// Config selects the models and token gates.
type Config struct {
	Model         string // primary structured-output model
	FallbackModel string // larger-context model for the capacity retry
	AltModel      string // even-parity chunk model
	TokenLimit    int    // document ceiling that triggers chunked mode
	ChunkBudget   int    // per-chunk token budget when splitting
}

// Transformer converts cleaned TOC trees into mindmaps.
type Transformer struct {
	caller  Caller
	counter tokens.Counter
	cfg     Config
	log     *slog.Logger
}

func New(caller Caller, counter tokens.Counter, cfg Config, log *slog.Logger) *Transformer {
	if cfg.TokenLimit <= 0 {
		cfg.TokenLimit = DefaultTokenLimit
	}
	if cfg.ChunkBudget <= 0 {
		cfg.ChunkBudget = DefaultChunkBudget
	}
	if cfg.FallbackModel == "" {
		cfg.FallbackModel = cfg.Model
	}
	if cfg.AltModel == "" {
		cfg.AltModel = cfg.Model
	}
	return &Transformer{caller: caller, counter: counter, cfg: cfg, log: log}
}

// Transform restructures tree into a mindmap and persists it to
// outputFile. Trees under the token ceiling go through one structured
// call; oversized trees (and single-shot results that fail to decode or
// validate) go through the chunked merge path.
func (t *Transformer) Transform(ctx context.Context, tree *toctree.CleanedNode, outputFile string) (*mindmap.Node, error) {
	count := t.counter.CountJSON(tree)
	if count > t.cfg.TokenLimit {
		t.log.Info("tree exceeds token ceiling, using chunked processing", "tokens", count, "limit", t.cfg.TokenLimit)
		return t.transformChunked(ctx, tree, outputFile)
	}

	treeJSON, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tree: %w", err)
	}

	raw, err := t.callWithCapacityRetry(ctx, t.cfg.Model, singleShotUserPrompt(string(treeJSON)))
	if err != nil {
		return nil, err
	}

	node, err := decodeResult(raw)
	if err == nil {
		err = mindmap.Validate(node)
	}
	if err != nil {
		// Schema/validation failures are recoverable: rebuild from
		// scratch through the chunked path.
		t.log.Warn("single-shot result rejected, falling back to chunked processing", "error", err)
		return t.transformChunked(ctx, tree, outputFile)
	}

	if err := writeJSON(outputFile, node); err != nil {
		return nil, err
	}
	return node, nil
}

// transformChunked splits the tree and folds chunks into one mindmap, one
// LLM call per chunk, carrying the merged result forward. Each chunk's
// intermediate result is persisted before the next call so a mid-sequence
// failure leaves recoverable state.
func (t *Transformer) transformChunked(ctx context.Context, tree *toctree.CleanedNode, outputFile string) (*mindmap.Node, error) {
	chunks := SplitTree(tree, t.cfg.ChunkBudget, t.counter)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("tree has no children to process")
	}
	t.log.Info("split tree into chunks", "chunks", len(chunks), "budget", t.cfg.ChunkBudget)

	var merged *mindmap.Node

	for i, chunk := range chunks {
		chunkNum := i + 1

		chunkJSON, err := json.MarshalIndent(chunk, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal chunk %d: %w", chunkNum, err)
		}

		var user string
		if chunkNum == 1 {
			user = firstChunkUserPrompt(chunkNum, len(chunks), t.cfg.ChunkBudget, string(chunkJSON))
		} else {
			prevJSON, err := json.MarshalIndent(merged, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshal merged result: %w", err)
			}
			user = continuationUserPrompt(chunkNum, len(chunks), string(prevJSON), string(chunkJSON))
		}

		// Alternate models across chunks. Throughput/diversity
		// heuristic, not a correctness requirement.
		model := t.cfg.Model
		if chunkNum%2 == 0 {
			model = t.cfg.AltModel
		}

		t.log.Info("processing chunk", "chunk", chunkNum, "total", len(chunks), "model", model)

		raw, err := t.callWithCapacityRetry(ctx, model, user)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunkNum, err)
		}

		merged, err = decodeResult(raw)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunkNum, err)
		}
		if err := mindmap.Validate(merged); err != nil {
			// No further fallback exists here; the read-time
			// normalizer still runs on the persisted result.
			t.log.Warn("chunked result violates structural contract", "chunk", chunkNum, "error", err)
		}

		if err := writeJSON(chunkFile(outputFile, chunkNum), merged); err != nil {
			return nil, err
		}
	}

	if err := writeJSON(outputFile, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// callWithCapacityRetry issues one structured call, retrying exactly once
// against the larger-context model when the failure is capacity-class.
// Any other error propagates untouched.
func (t *Transformer) callWithCapacityRetry(ctx context.Context, model, user string) (json.RawMessage, error) {
	raw, err := t.caller.CompleteStructured(ctx, model, systemPrompt, user, mindmapSchema)
	if err == nil {
		return raw, nil
	}
	if !t.caller.IsCapacityError(err) {
		return nil, err
	}

	t.log.Warn("capacity error, retrying with larger-context model", "model", model, "fallback", t.cfg.FallbackModel, "error", err)
	return t.caller.CompleteStructured(ctx, t.cfg.FallbackModel, systemPrompt, user, mindmapSchema)
}

func decodeResult(raw json.RawMessage) (*mindmap.Node, error) {
	var node mindmap.Node
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("decode mindmap: %w", err)
	}
	return &node, nil
}

// chunkFile inserts "_chunk_{n}" before the output file's extension.
func chunkFile(outputFile string, n int) string {
	ext := filepath.Ext(outputFile)
	return fmt.Sprintf("%s_chunk_%d%s", strings.TrimSuffix(outputFile, ext), n, ext)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
