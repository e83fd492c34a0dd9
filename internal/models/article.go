// Package models defines core data structures for articles, chunks, and search results.
package models

import "time"

// Article is a single news item fetched from a feed. Articles are
// immutable once created and are discarded after chunking.
type Article struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
}

// Chunk is a bounded-length slice of an article's text carrying
// provenance metadata. It is the unit of embedding and storage.
type Chunk struct {
	Text        string    `json:"text"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	// Index is 1-based within the article.
	Index int `json:"chunk_index"`
}

// ChunkPayload is the denormalized payload stored with each point so
// search results can be returned without a join. Field names match the
// collection's stored payload keys.
type ChunkPayload struct {
	Text       string `json:"text"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	PubDate    string `json:"pubDate"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunkIndex"`
}

// Payload converts a chunk to its stored payload form.
func (c *Chunk) Payload() ChunkPayload {
	pubDate := ""
	if !c.PublishedAt.IsZero() {
		pubDate = c.PublishedAt.Format(time.RFC3339)
	}
	return ChunkPayload{
		Text:       c.Text,
		Title:      c.Title,
		Link:       c.Link,
		PubDate:    pubDate,
		Source:     c.Source,
		ChunkIndex: c.Index,
	}
}

// Distance is the similarity function used to rank vectors during search.
type Distance string

const (
	DistanceCosine    Distance = "Cosine"
	DistanceDot       Distance = "Dot"
	DistanceEuclidean Distance = "Euclid"
)

// CollectionMetadata describes a vector collection. It is created once
// and treated as immutable for the collection's lifetime.
type CollectionMetadata struct {
	Name      string   `json:"name"`
	Dimension int      `json:"dimension"`
	Distance  Distance `json:"distance"`
}

// SearchResult is a single search hit, ordered by similarity score descending.
type SearchResult struct {
	Score   float64      `json:"score"`
	Payload ChunkPayload `json:"payload"`
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Articles int `json:"articles"`
	Chunks   int `json:"chunks"`
	Sources  int `json:"sources"`
}
