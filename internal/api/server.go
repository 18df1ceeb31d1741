package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mindmapd/internal/config"
	"mindmapd/internal/history"
	"mindmapd/internal/llm"
	"mindmapd/internal/pipeline"
	"mindmapd/internal/rag"
)

// Server is the HTTP API server for mindmapd.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	store    *history.Store
	client   *llm.Client
	counter  rag.TokenCounter
	sessions *rag.Cache
	log      *slog.Logger
	cfg      config.Config

	// current tracks the document the UI is looking at.
	mu      sync.Mutex
	current string
}

// NewServer creates and configures the HTTP server.
func NewServer(pl *pipeline.Pipeline, store *history.Store, client *llm.Client, counter rag.TokenCounter, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		pipeline: pl,
		store:    store,
		client:   client,
		counter:  counter,
		sessions: rag.NewCache(),
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Post("/api/upload", s.handleUpload)
	r.Get("/api/mindmap", s.handleMindmap)

	r.Get("/api/history", s.handleListHistory)
	r.Get("/api/history/{docID}", s.handleGetHistory)
	r.Post("/api/history/{docID}/select", s.handleSelectHistory)
	r.Delete("/api/history/{docID}", s.handleDeleteHistory)

	r.Post("/api/chat", s.handleChat)
	r.Post("/api/clear", s.handleClearChat)

	r.Get("/api/stats/llm", s.handleLLMStats)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// currentDoc returns the selected document ID, or "" when none is selected.
func (s *Server) currentDoc() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Server) setCurrentDoc(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
}

// clearCurrentDoc resets the selection if it points at the given document.
func (s *Server) clearCurrentDoc(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == id {
		s.current = ""
	}
}
