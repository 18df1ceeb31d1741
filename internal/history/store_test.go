package history

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestStore_Roundtrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	id, err := s.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	meta := Metadata{
		ID:           id,
		DocumentName: "report.pdf",
		FileType:     ".pdf",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		HasMindmap:   true,
	}
	if err := s.WriteMetadata(meta); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DocumentName != "report.pdf" || !got.HasMindmap {
		t.Errorf("unexpected metadata: %+v", got)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	base := time.Now().UTC()
	for i, name := range []string{"old.md", "mid.md", "new.md"} {
		id, err := s.Create()
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		err = s.WriteMetadata(Metadata{
			ID:           id,
			DocumentName: name,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("WriteMetadata: %v", err)
		}
	}

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].DocumentName != "new.md" || items[2].DocumentName != "old.md" {
		t.Errorf("wrong order: %q, %q, %q", items[0].DocumentName, items[1].DocumentName, items[2].DocumentName)
	}
}

func TestStore_DeleteAndNotFound(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	id, err := s.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.WriteMetadata(Metadata{ID: id, DocumentName: "doc.txt"}); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestStore_Artifacts(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	id, err := s.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := os.WriteFile(s.Path(id, MarkdownFile), []byte("# Doc\n"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	data, err := s.ReadArtifact(id, MarkdownFile)
	if err != nil {
		t.Fatalf("ReadArtifact: %v", err)
	}
	if string(data) != "# Doc\n" {
		t.Errorf("unexpected artifact content: %q", data)
	}

	if _, err := s.ReadArtifact(id, MindmapFile); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing artifact, got %v", err)
	}
}
