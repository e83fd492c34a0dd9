// Package search embeds queries and runs similarity lookups against the
// vector store.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vanihb04/voosh-chatbot-backend/internal/embedding"
	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
	"github.com/vanihb04/voosh-chatbot-backend/internal/vectorstore"
)

// Service answers semantic search queries. Results come back in the
// store's ranking order, unmodified.
type Service struct {
	embedder embedding.Embedder
	store    vectorstore.Store
	logger   *zap.Logger
}

// NewService creates a search service.
func NewService(embedder embedding.Embedder, store vectorstore.Store, logger *zap.Logger) *Service {
	return &Service{embedder: embedder, store: store, logger: logger}
}

// Search validates the query, embeds it, and returns up to limit ranked
// results. An empty or whitespace-only query is rejected before any
// network call is made.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	q := models.SearchQuery{Query: query, Limit: limit}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	vector, err := s.embedder.Embed(ctx, q.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.store.Search(ctx, vector, q.Limit, true)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	s.logger.Debug("search completed",
		zap.String("query", q.Query),
		zap.Int("limit", q.Limit),
		zap.Int("results", len(results)))
	return results, nil
}
