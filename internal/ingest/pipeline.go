package ingest

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vanihb04/voosh-chatbot-backend/internal/embedding"
	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
	"github.com/vanihb04/voosh-chatbot-backend/internal/vectorstore"
)

// State is the pipeline's position in an ingestion run.
type State string

const (
	StateIdle               State = "idle"
	StateFetching           State = "fetching"
	StateChunking           State = "chunking"
	StateEnsuringCollection State = "ensuring_collection"
	StateUpserting          State = "upserting"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

// Fetcher retrieves articles from all configured sources. Per-source
// failures are absorbed inside the fetcher; FetchAll never fails.
type Fetcher interface {
	FetchAll(ctx context.Context) []models.Article
	SourceCount() int
}

// Options tunes a pipeline.
type Options struct {
	// ChunkSize is the chunk window size in code points.
	ChunkSize int
	// BatchSize is how many chunks are embedded and upserted per batch.
	BatchSize int
	// Concurrency bounds how many batches may be in flight at once.
	// The default of 1 keeps batch processing strictly sequential.
	Concurrency int
}

// Pipeline orchestrates fetch, chunk, embed, and upsert for one corpus
// collection. It is safe to run concurrently, but concurrent runs race
// on overlapping point ids and will overwrite each other's points.
type Pipeline struct {
	fetcher  Fetcher
	chunker  *Chunker
	embedder embedding.Embedder
	store    vectorstore.Store
	meta     models.CollectionMetadata
	opts     Options
	logger   *zap.Logger

	mu    sync.Mutex
	state State
}

// NewPipeline creates a pipeline. Returns an error for a non-positive
// chunk size.
func NewPipeline(
	fetcher Fetcher,
	embedder embedding.Embedder,
	store vectorstore.Store,
	meta models.CollectionMetadata,
	opts Options,
	logger *zap.Logger,
) (*Pipeline, error) {
	chunker, err := NewChunker(opts.ChunkSize)
	if err != nil {
		return nil, err
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Pipeline{
		fetcher:  fetcher,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		meta:     meta,
		opts:     opts,
		state:    StateIdle,
		logger:   logger,
	}, nil
}

// State returns the pipeline's most recent state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run executes one full ingestion: fetch all sources, chunk every
// article, ensure the collection, then embed and upsert chunks in
// batches. On failure the returned stats reflect the progress made;
// batches already upserted remain in the store.
func (p *Pipeline) Run(ctx context.Context) (*models.IngestStats, error) {
	stats := &models.IngestStats{Sources: p.fetcher.SourceCount()}

	p.setState(StateFetching)
	p.logger.Info("starting ingestion", zap.Int("sources", stats.Sources))
	articles := p.fetcher.FetchAll(ctx)
	stats.Articles = len(articles)
	p.logger.Info("fetched articles", zap.Int("total", stats.Articles))

	p.setState(StateChunking)
	chunks := p.chunker.ChunkAll(articles)
	stats.Chunks = len(chunks)
	p.logger.Info("created chunks", zap.Int("total", stats.Chunks))

	p.setState(StateEnsuringCollection)
	if err := p.store.EnsureCollection(ctx, p.meta); err != nil {
		p.setState(StateFailed)
		return stats, fmt.Errorf("ensure collection: %w", err)
	}

	p.setState(StateUpserting)
	if err := p.upsertBatches(ctx, chunks); err != nil {
		p.setState(StateFailed)
		return stats, err
	}

	p.setState(StateCompleted)
	p.logger.Info("ingestion completed",
		zap.Int("articles", stats.Articles),
		zap.Int("chunks", stats.Chunks),
		zap.Int("sources", stats.Sources))
	return stats, nil
}

// upsertBatches embeds and upserts chunks in batches of BatchSize.
// Point ids are the chunk's position in the run (batch offset plus
// in-batch index), so a rerun over the same corpus overwrites the
// previous run's points.
func (p *Pipeline) upsertBatches(ctx context.Context, chunks []models.Chunk) error {
	if p.opts.Concurrency > 1 {
		return p.upsertBatchesConcurrent(ctx, chunks)
	}
	totalBatches := (len(chunks) + p.opts.BatchSize - 1) / p.opts.BatchSize
	for start := 0; start < len(chunks); start += p.opts.BatchSize {
		// Cancellation takes effect at batch boundaries.
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + p.opts.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := p.processBatch(ctx, chunks[start:end], start); err != nil {
			return err
		}
		p.logger.Info("uploaded batch",
			zap.Int("batch", start/p.opts.BatchSize+1),
			zap.Int("total_batches", totalBatches),
			zap.Int("processed", end))
	}
	return nil
}

// upsertBatchesConcurrent runs batches through a bounded worker pool.
// Ids stay batch-derived, so ordering across batches does not affect
// correctness, only determinism of the upsert sequence.
func (p *Pipeline) upsertBatchesConcurrent(ctx context.Context, chunks []models.Chunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for start := 0; start < len(chunks); start += p.opts.BatchSize {
		end := start + p.opts.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		offset := start
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return p.processBatch(gctx, batch, offset)
		})
	}
	return g.Wait()
}

// processBatch embeds one batch and upserts it with wait=true so the
// write is durable before the batch counts as done.
func (p *Pipeline) processBatch(ctx context.Context, batch []models.Chunk, offset int) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch at offset %d: %w", offset, err)
	}
	points := make([]vectorstore.Point, len(batch))
	for i, c := range batch {
		points[i] = vectorstore.Point{
			ID:      uint64(offset + i),
			Vector:  vectors[i],
			Payload: c.Payload(),
		}
	}
	if err := p.store.Upsert(ctx, points, true); err != nil {
		return fmt.Errorf("upsert batch at offset %d: %w", offset, err)
	}
	return nil
}
