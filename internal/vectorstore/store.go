// Package vectorstore defines the vector database contract and its
// failure taxonomy.
package vectorstore

import (
	"context"

	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
)

// Point is one stored vector with its identifier and payload.
// Upserting a point with an existing id overwrites it.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload models.ChunkPayload
}

// CollectionInfo describes the live state of a collection.
type CollectionInfo struct {
	Status      string `json:"status"`
	PointsCount uint64 `json:"points_count"`
	VectorSize  int    `json:"vector_size"`
	Distance    string `json:"distance"`
}

// Store manages a named vector collection.
type Store interface {
	// EnsureCollection creates the collection if absent and succeeds
	// silently if it already exists. Callers must ensure dimension and
	// distance metric match the existing collection.
	EnsureCollection(ctx context.Context, meta models.CollectionMetadata) error
	// Upsert inserts or overwrites points by id. When wait is true the
	// call does not return until the write is visible to reads.
	Upsert(ctx context.Context, points []Point, wait bool) error
	// Search returns up to limit nearest points by the collection's
	// distance metric, never more than requested. limit must be positive.
	Search(ctx context.Context, vector []float32, limit int, withPayload bool) ([]models.SearchResult, error)
	// Count returns the number of stored points. exact forbids estimates.
	Count(ctx context.Context, exact bool) (uint64, error)
	// DeleteCollection destroys the collection and all its points.
	DeleteCollection(ctx context.Context) error
	// Info returns the collection's live state.
	Info(ctx context.Context) (*CollectionInfo, error)
}
