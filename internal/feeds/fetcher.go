// Package feeds fetches articles from configured feed endpoints.
package feeds

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/vanihb04/voosh-chatbot-backend/internal/config"
	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
)

// Fetcher retrieves articles from one or more feed sources. Each source
// is fetched independently; a failure on one source is logged and yields
// zero articles for that source without aborting the overall fetch.
type Fetcher struct {
	parser       *gofeed.Parser
	maxPerSource int
	logger       *zap.Logger

	mu      sync.RWMutex
	sources []config.Source
}

// NewFetcher creates a fetcher for the given sources. maxPerSource caps
// how many items are taken from a single feed; zero means no cap.
func NewFetcher(sources []config.Source, maxPerSource int, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		parser:       gofeed.NewParser(),
		sources:      sources,
		maxPerSource: maxPerSource,
		logger:       logger,
	}
}

// SetSources replaces the configured source list. Safe to call while a
// fetch is in flight; the new list applies to subsequent fetches.
func (f *Fetcher) SetSources(sources []config.Source) {
	f.mu.Lock()
	f.sources = sources
	f.mu.Unlock()
}

// Sources returns a copy of the configured source list.
func (f *Fetcher) Sources() []config.Source {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]config.Source(nil), f.sources...)
}

// SourceCount returns the number of configured sources.
func (f *Fetcher) SourceCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sources)
}

// FetchAll fetches every configured source and returns a flattened list
// of articles in source order. Per-source failures never abort the fetch.
func (f *Fetcher) FetchAll(ctx context.Context) []models.Article {
	sources := f.Sources()
	var all []models.Article
	for _, src := range sources {
		articles, err := f.fetchSource(ctx, src)
		if err != nil {
			f.logger.Warn("source fetch failed, skipping",
				zap.String("source", src.Name),
				zap.String("endpoint", src.Endpoint),
				zap.Error(err))
			continue
		}
		f.logger.Info("fetched articles from source",
			zap.String("source", src.Name),
			zap.Int("count", len(articles)))
		all = append(all, articles...)
	}
	return all
}

// fetchSource fetches and parses a single feed.
func (f *Fetcher) fetchSource(ctx context.Context, src config.Source) ([]models.Article, error) {
	if src.Format != "rss" {
		return nil, fmt.Errorf("unsupported source format %q", src.Format)
	}
	feed, err := f.parser.ParseURLWithContext(src.Endpoint, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	items := feed.Items
	if f.maxPerSource > 0 && len(items) > f.maxPerSource {
		items = items[:f.maxPerSource]
	}
	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		a := models.Article{
			Title:  item.Title,
			Body:   item.Description,
			Link:   item.Link,
			Source: src.Name,
		}
		if a.Body == "" {
			a.Body = item.Content
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}
