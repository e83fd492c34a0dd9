// Package embedding converts text into fixed-dimension vectors via a
// remote embedding provider.
package embedding

import "context"

// Embedder produces vector embeddings for text. EmbedBatch performs one
// provider request per call; splitting input into batches is the
// caller's responsibility.
type Embedder interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one embedding per input text, in input order.
	// On any provider failure the whole call fails with no partial results.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the fixed embedding dimension.
	Dimensions() int
}
