package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"mindmapd/internal/history"
	"mindmapd/internal/rag"
)

type chatRequest struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// handleChat answers a question about a document, grounded in its indexed
// content. The index is built on first use and persisted alongside the
// other artifacts.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		jsonError(w, "message is required", http.StatusBadRequest)
		return
	}

	id := req.ID
	if id == "" {
		id = s.currentDoc()
	}
	if id == "" {
		jsonError(w, "no document selected", http.StatusNotFound)
		return
	}

	session, err := s.session(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		jsonError(w, "prepare chat session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	answer, err := session.Chat(r.Context(), s.embedder(), s.client, s.cfg.ChatModel, req.Message)
	if err != nil {
		jsonError(w, "chat failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(answer)
}

// handleClearChat drops the conversation memory of a document's session
// but keeps its index.
func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if r.Body != nil {
		// The body is optional; ignore decode errors for empty bodies.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	id := req.ID
	if id == "" {
		id = s.currentDoc()
	}
	if id == "" {
		jsonError(w, "no document selected", http.StatusNotFound)
		return
	}

	if session, ok := s.sessions.Get(id); ok {
		session.Reset()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"cleared": id})
}

// session returns the cached chat session for a document, loading or
// building its index as needed.
func (s *Server) session(ctx context.Context, id string) (*rag.Session, error) {
	if session, ok := s.sessions.Get(id); ok {
		return session, nil
	}

	if _, err := s.store.Get(id); err != nil {
		return nil, err
	}

	indexPath := s.store.Path(id, rag.IndexFile)
	idx, err := rag.LoadIndex(indexPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		markdown, err := s.store.ReadArtifact(id, history.MarkdownFile)
		if err != nil {
			return nil, err
		}
		idx, err = rag.BuildIndex(ctx, string(markdown), s.embedder(), s.counter)
		if err != nil {
			return nil, err
		}
		if err := idx.Save(indexPath); err != nil {
			return nil, err
		}
		s.log.Info("rag index built", "doc_id", id, "passages", len(idx.Passages))
	}

	session := rag.NewSession(idx)
	s.sessions.Put(id, session)
	return session, nil
}

func (s *Server) embedder() rag.Embedder {
	return rag.ClientEmbedder{Client: s.client, Model: s.cfg.EmbeddingModel}
}
