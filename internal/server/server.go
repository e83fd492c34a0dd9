// Package server provides the HTTP API for the news RAG backend.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vanihb04/voosh-chatbot-backend/internal/chat"
	"github.com/vanihb04/voosh-chatbot-backend/internal/config"
	"github.com/vanihb04/voosh-chatbot-backend/internal/ingest"
	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
	"github.com/vanihb04/voosh-chatbot-backend/internal/search"
	"github.com/vanihb04/voosh-chatbot-backend/internal/vectorstore"
)

// Server is the HTTP server for the news RAG API.
type Server struct {
	pipeline *ingest.Pipeline
	searcher *search.Service
	store    vectorstore.Store
	meta     models.CollectionMetadata
	chat     *chat.Service
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. chatSvc may
// be nil when answer generation is not configured; chat endpoints then
// report 501.
func NewServer(
	pipeline *ingest.Pipeline,
	searcher *search.Service,
	store vectorstore.Store,
	meta models.CollectionMetadata,
	chatSvc *chat.Service,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline: pipeline,
		searcher: searcher,
		store:    store,
		meta:     meta,
		chat:     chatSvc,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/ingest", s.handleIngest)
	r.Get("/api/v1/stats", s.handleStats)
	r.Post("/api/v1/search", s.handleSearch)
	r.Delete("/api/v1/collection", s.handleClearCollection)
	r.Post("/api/v1/chat", s.handleChat)
	r.Get("/api/v1/chat/history/{sessionID}", s.handleHistory)
	r.Delete("/api/v1/chat/history/{sessionID}", s.handleClearHistory)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
