package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"mindmapd/internal/history"
	"mindmapd/internal/parser"
)

// handleUpload accepts a document, runs the full pipeline on it, and
// makes the result the current selection.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	if header.Size > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	res, err := s.pipeline.Process(r.Context(), filename, file)
	if err != nil {
		s.log.Error("processing failed", "name", filename, "doc_id", res.ID, "error", err)
		if res.ID == "" {
			// Nothing was stored; the document itself is the problem.
			jsonError(w, "processing failed: "+err.Error(), http.StatusBadRequest)
			return
		}
		// The markdown and TOC artifacts were stored, only the mindmap
		// transform failed: report the partial result.
		s.setCurrentDoc(res.ID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":                res.ID,
			"mindmap_generated": false,
			"error":             err.Error(),
		})
		return
	}

	s.setCurrentDoc(res.ID)

	node, err := s.pipeline.Mindmap(res.ID)
	if err != nil {
		jsonError(w, "load mindmap: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":                res.ID,
		"mindmap_generated": true,
		"mindmap":           node,
	})
}

// handleMindmap returns the normalized mindmap of a document. Without an id
// query parameter it serves the current selection.
func (s *Server) handleMindmap(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		id = s.currentDoc()
	}
	if id == "" {
		jsonError(w, "no document selected", http.StatusNotFound)
		return
	}

	node, err := s.pipeline.Mindmap(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			jsonError(w, "mindmap not found", http.StatusNotFound)
			return
		}
		jsonError(w, "load mindmap: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      id,
		"mindmap": node,
	})
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List()
	if err != nil {
		jsonError(w, "list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"documents": items,
		"current":   s.currentDoc(),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	meta, err := s.store.Get(docID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		jsonError(w, "load document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meta)
}

// handleSelectHistory makes a stored document the current selection.
func (s *Server) handleSelectHistory(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	meta, err := s.store.Get(docID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		jsonError(w, "load document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.setCurrentDoc(docID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meta)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.store.Delete(docID); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		jsonError(w, "delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// A stale session would keep answering for the deleted document.
	s.sessions.Evict(docID)
	s.clearCurrentDoc(docID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": docID})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
