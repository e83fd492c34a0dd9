// Package qdrant is a REST client for the Qdrant vector database.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
	"github.com/vanihb04/voosh-chatbot-backend/internal/vectorstore"
)

// Store is a Qdrant-backed vector store scoped to one collection.
// Failures are classified into the vectorstore error kinds from the
// HTTP status code rather than the response message text.
type Store struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
	logger     *zap.Logger
}

// Config configures the Qdrant client.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

// NewStore creates a Qdrant store for the configured collection.
func NewStore(cfg Config, logger *zap.Logger) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// EnsureCollection creates the collection if it does not exist. An
// already-exists response from Qdrant is treated as success.
func (s *Store) EnsureCollection(ctx context.Context, meta models.CollectionMetadata) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     meta.Dimension,
			"distance": string(meta.Distance),
		},
	}
	err := s.request(ctx, http.MethodPut, s.collectionURL(), body, nil, "ensure_collection")
	if err != nil {
		if vectorstore.IsAlreadyExists(err) {
			s.logger.Debug("collection already exists", zap.String("collection", s.collection))
			return nil
		}
		return err
	}
	s.logger.Info("created collection",
		zap.String("collection", s.collection),
		zap.Int("dimension", meta.Dimension),
		zap.String("distance", string(meta.Distance)))
	return nil
}

// Upsert inserts or overwrites points by id. Vector lengths are checked
// against the collection dimension before anything goes on the wire.
func (s *Store) Upsert(ctx context.Context, points []vectorstore.Point, wait bool) error {
	const op = "upsert"
	reqPoints := make([]map[string]any, len(points))
	for i, p := range points {
		if len(p.Vector) != s.dimension {
			return vectorstore.NewError(vectorstore.KindDimensionMismatch, op,
				fmt.Errorf("point %d has dimension %d, collection expects %d", p.ID, len(p.Vector), s.dimension))
		}
		reqPoints[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	url := fmt.Sprintf("%s/points?wait=%t", s.collectionURL(), wait)
	return s.request(ctx, http.MethodPut, url, map[string]any{"points": reqPoints}, nil, op)
}

// Search returns up to limit nearest points.
func (s *Store) Search(ctx context.Context, vector []float32, limit int, withPayload bool) ([]models.SearchResult, error) {
	const op = "search"
	if limit <= 0 {
		return nil, fmt.Errorf("search limit must be positive, got %d", limit)
	}
	if len(vector) != s.dimension {
		return nil, vectorstore.NewError(vectorstore.KindDimensionMismatch, op,
			fmt.Errorf("query vector has dimension %d, collection expects %d", len(vector), s.dimension))
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": withPayload,
	}
	var resp struct {
		Result []struct {
			Score   float64             `json:"score"`
			Payload models.ChunkPayload `json:"payload"`
		} `json:"result"`
	}
	if err := s.request(ctx, http.MethodPost, s.collectionURL()+"/points/search", body, &resp, op); err != nil {
		return nil, err
	}
	results := make([]models.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, models.SearchResult{Score: r.Score, Payload: r.Payload})
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of stored points.
func (s *Store) Count(ctx context.Context, exact bool) (uint64, error) {
	var resp struct {
		Result struct {
			Count uint64 `json:"count"`
		} `json:"result"`
	}
	body := map[string]any{"exact": exact}
	if err := s.request(ctx, http.MethodPost, s.collectionURL()+"/points/count", body, &resp, "count"); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// DeleteCollection destroys the collection and all its points.
func (s *Store) DeleteCollection(ctx context.Context) error {
	return s.request(ctx, http.MethodDelete, s.collectionURL(), nil, nil, "delete_collection")
}

// Info returns the collection's live state.
func (s *Store) Info(ctx context.Context) (*vectorstore.CollectionInfo, error) {
	var resp struct {
		Result struct {
			Status      string `json:"status"`
			PointsCount uint64 `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size     int    `json:"size"`
						Distance string `json:"distance"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := s.request(ctx, http.MethodGet, s.collectionURL(), nil, &resp, "info"); err != nil {
		return nil, err
	}
	return &vectorstore.CollectionInfo{
		Status:      resp.Result.Status,
		PointsCount: resp.Result.PointsCount,
		VectorSize:  resp.Result.Config.Params.Vectors.Size,
		Distance:    resp.Result.Config.Params.Vectors.Distance,
	}, nil
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

// request performs one HTTP call and classifies any failure.
func (s *Store) request(ctx context.Context, method, url string, body, out any, op string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return vectorstore.NewError(vectorstore.KindUnknown, op, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return vectorstore.NewError(vectorstore.KindUnknown, op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		// Connection and timeout faults are transient.
		return vectorstore.NewError(vectorstore.KindUnavailable, op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return vectorstore.NewError(classify(resp.StatusCode), op,
			fmt.Errorf("qdrant %s %s: %s", method, url, resp.Status))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return vectorstore.NewError(vectorstore.KindUnknown, op, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// classify maps an HTTP status code to an error kind.
func classify(status int) vectorstore.ErrorKind {
	switch {
	case status == http.StatusConflict:
		return vectorstore.KindAlreadyExists
	case status == http.StatusNotFound:
		return vectorstore.KindNotFound
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway ||
		status == http.StatusGatewayTimeout || status == http.StatusTooManyRequests:
		return vectorstore.KindUnavailable
	default:
		return vectorstore.KindUnknown
	}
}
