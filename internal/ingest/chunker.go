// Package ingest provides article chunking and the ingestion pipeline.
package ingest

import (
	"fmt"

	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
)

// Chunker splits article text into fixed-size non-overlapping windows.
// Window size is counted in Unicode code points, not bytes, so chunk
// boundaries never split a multi-byte character and concatenating a
// document's chunks in index order reconstructs title + "\n" + body exactly.
type Chunker struct {
	chunkSize int
}

// NewChunker creates a chunker. chunkSize must be positive.
func NewChunker(chunkSize int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	return &Chunker{chunkSize: chunkSize}, nil
}

// Chunk splits an article into ordered chunks. The text chunked is
// title + "\n" + body; every chunk is exactly chunkSize code points
// except possibly the last. Chunk indices start at 1. An empty body
// still yields at least one chunk holding the title and separator.
func (c *Chunker) Chunk(article models.Article) []models.Chunk {
	runes := []rune(article.Title + "\n" + article.Body)
	chunks := make([]models.Chunk, 0, (len(runes)+c.chunkSize-1)/c.chunkSize)
	for i := 0; i < len(runes); i += c.chunkSize {
		end := i + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Text:        string(runes[i:end]),
			Title:       article.Title,
			Link:        article.Link,
			PublishedAt: article.PublishedAt,
			Source:      article.Source,
			Index:       i/c.chunkSize + 1,
		})
	}
	return chunks
}

// ChunkAll applies Chunk to every article in order and returns a single
// ordered chunk list.
func (c *Chunker) ChunkAll(articles []models.Article) []models.Chunk {
	var all []models.Chunk
	for _, a := range articles {
		all = append(all, c.Chunk(a)...)
	}
	return all
}
