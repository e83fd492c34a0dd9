package config

// DefaultCollection is the vector collection holding the article corpus.
const DefaultCollection = "news-articles"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = []Source{
			{Name: "Reuters", Endpoint: "https://www.reuters.com/arc/outboundfeeds/news-sitemap-index/?outputType=xml", Format: "rss"},
			{Name: "BBC News", Endpoint: "http://feeds.bbci.co.uk/news/rss.xml", Format: "rss"},
			{Name: "CNN", Endpoint: "http://rss.cnn.com/rss/edition.rss", Format: "rss"},
		}
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 500
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 10
	}
	if cfg.Ingest.Concurrency == 0 {
		cfg.Ingest.Concurrency = 1
	}
	if cfg.Ingest.MaxPerSource == 0 {
		cfg.Ingest.MaxPerSource = 50
	}
	if cfg.Qdrant.URL == "" {
		cfg.Qdrant.URL = "http://localhost:6333"
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = DefaultCollection
	}
	if cfg.Qdrant.Dimension == 0 {
		cfg.Qdrant.Dimension = 768
	}
	if cfg.Qdrant.Distance == "" {
		cfg.Qdrant.Distance = "Cosine"
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = 15
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.jina.ai/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "jina-embeddings-v2-base-en"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = 3
	}
	if cfg.Embedding.RetryDelaySecs == 0 {
		cfg.Embedding.RetryDelaySecs = 2
	}
	if cfg.Embedding.RequestsPerSecond == 0 {
		cfg.Embedding.RequestsPerSecond = 2
	}
	if cfg.Redis.SessionTTLHours == 0 {
		cfg.Redis.SessionTTLHours = 24
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gemini-1.5-flash"
	}
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = 5
	}
}
