// Package history persists per-document artifact folders: the uploaded
// file, the parsed markdown, the TOC tree, the mindmap, and metadata.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound reports a missing document folder.
var ErrNotFound = errors.New("history: document not found")

// Artifact file names inside a document folder.
const (
	MetadataFile = "metadata.json"
	MarkdownFile = "parsed.md"
	TocFile      = "toc_tree.json"
	MindmapFile  = "mindmap.json"
)

// Metadata describes one processed document.
type Metadata struct {
	ID           string    `json:"id"`
	DocumentName string    `json:"document_name"`
	FileType     string    `json:"file_type"`
	CreatedAt    time.Time `json:"created_at"`
	HasMindmap   bool      `json:"has_mindmap"`
}

// Store manages uuid-named document folders under a base directory.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Create allocates a new document folder and returns its id.
func (s *Store) Create() (string, error) {
	id := uuid.NewString()
	if err := os.MkdirAll(s.Dir(id), 0o755); err != nil {
		return "", fmt.Errorf("create document dir: %w", err)
	}
	return id, nil
}

// Dir returns the folder for a document id.
func (s *Store) Dir(id string) string {
	return filepath.Join(s.baseDir, id)
}

// Path returns the path of a named artifact inside a document folder.
func (s *Store) Path(id, name string) string {
	return filepath.Join(s.baseDir, id, name)
}

// WriteMetadata persists the metadata record for a document.
func (s *Store) WriteMetadata(meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.Path(meta.ID, MetadataFile), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Get loads a document's metadata.
func (s *Store) Get(id string) (Metadata, error) {
	data, err := os.ReadFile(s.Path(id, MetadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

// List returns all document metadata, newest first. Folders without a
// readable metadata file are skipped.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}

	var items []Metadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Get(e.Name())
		if err != nil {
			continue
		}
		items = append(items, meta)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// Delete removes a document folder and everything in it.
func (s *Store) Delete(id string) error {
	dir := s.Dir(id)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("stat document dir: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete document dir: %w", err)
	}
	return nil
}

// ReadArtifact loads a named artifact from a document folder.
func (s *Store) ReadArtifact(id, name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(id, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
