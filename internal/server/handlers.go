package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("ingest requested")
	stats, err := s.pipeline.Run(r.Context())
	if err != nil {
		s.logger.Error("ingestion failed", zap.Error(err))
		s.respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "News ingestion failed",
			"error":   err.Error(),
			"stats":   stats,
		})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "News ingestion completed",
		"stats":   stats,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.Info(r.Context())
	if err != nil {
		s.logger.Error("collection info failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	count, err := s.store.Count(r.Context(), true)
	if err != nil {
		s.logger.Error("count failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats": map[string]any{
			"collection":   info,
			"vectorsCount": count,
		},
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	results, err := s.searcher.Search(r.Context(), query.Query, query.Limit)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"query":   query.Query,
		"results": results,
	})
}

// handleClearCollection destroys the collection and recreates it empty.
func (s *Server) handleClearCollection(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("clearing collection", zap.String("collection", s.meta.Name))
	if err := s.store.DeleteCollection(r.Context()); err != nil {
		s.logger.Error("delete collection failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.EnsureCollection(r.Context(), s.meta); err != nil {
		s.logger.Error("recreate collection failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "News articles cleared successfully",
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		s.respondError(w, http.StatusNotImplemented, "chat is not configured")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	answer, err := s.chat.Chat(r.Context(), sessionID, req.Message)
	if err != nil {
		s.logger.Error("chat failed", zap.String("session", sessionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"answer":    answer,
		"sessionId": sessionID,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		s.respondError(w, http.StatusNotImplemented, "chat is not configured")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	history, err := s.chat.History(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("history read failed", zap.String("session", sessionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		s.respondError(w, http.StatusNotImplemented, "chat is not configured")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.chat.ClearHistory(r.Context(), sessionID); err != nil {
		s.logger.Error("history clear failed", zap.String("session", sessionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"message": "Session history cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]any{"success": false, "error": message})
}
