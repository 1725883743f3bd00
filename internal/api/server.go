// Package api is the HTTP surface of the service: document uploads,
// index lifecycle, jobs and question answering.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/OuyangRuyi/pdf-reader/internal/config"
	"github.com/OuyangRuyi/pdf-reader/internal/docsource"
	"github.com/OuyangRuyi/pdf-reader/internal/llm"
	"github.com/OuyangRuyi/pdf-reader/internal/meta"
	"github.com/OuyangRuyi/pdf-reader/internal/pipeline"
	"github.com/OuyangRuyi/pdf-reader/internal/rag"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server.
type Server struct {
	router       chi.Router
	engine       *rag.Engine
	orchestrator *pipeline.Orchestrator
	docs         *docsource.LocalStore
	meta         *meta.Store
	generator    llm.Generator
	stats        *llm.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(engine *rag.Engine, orch *pipeline.Orchestrator, docs *docsource.LocalStore, metaStore *meta.Store, generator llm.Generator, stats *llm.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		engine:       engine,
		orchestrator: orch,
		docs:         docs,
		meta:         metaStore,
		generator:    generator,
		stats:        stats,
		log:          log,
		cfg:          cfg,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents", s.handleUpload)
		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Post("/api/documents/{docID}/index", s.handleCreateIndex)
		r.Get("/api/index", s.handleListIndexed)
		r.Delete("/api/index/{docID}", s.handleDeleteIndex)

		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Post("/api/query", s.handleQuery)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
