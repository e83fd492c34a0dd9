package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vanihb04/voosh-chatbot-backend/pkg/utils"
)

// JinaConfig configures the remote embedding client. Jina serves an
// OpenAI-compatible embeddings endpoint, so the client speaks that
// protocol against a custom base URL.
type JinaConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	Dimensions        int
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64
}

// JinaClient is an Embedder backed by the Jina embeddings API.
// Transient provider failures (rate limit, 5xx, connection errors) are
// retried a bounded number of times with jittered backoff; the call
// fails as a whole once retries are exhausted.
type JinaClient struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewJinaClient creates an embedding client from cfg.
func NewJinaClient(cfg JinaConfig, logger *zap.Logger) (*JinaClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embedding API key is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", cfg.Dimensions)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = 2 * time.Second
	}
	return &JinaClient{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}, nil
}

// Dimensions returns the fixed embedding dimension.
func (c *JinaClient) Dimensions() int { return c.dimensions }

// Embed returns the embedding for a single text.
func (c *JinaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch sends one embeddings request for all texts and returns the
// vectors in input order.
func (c *JinaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := utils.Backoff(c.retryDelay, attempt)
			c.logger.Debug("retrying embedding request",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: c.model,
		})
		if err != nil {
			if !retryable(err) {
				return nil, fmt.Errorf("embedding request failed: %w", err)
			}
			lastErr = err
			continue
		}
		return c.collect(texts, resp)
	}
	return nil, fmt.Errorf("embedding request failed after %d retries: %w", c.maxRetries, lastErr)
}

// collect validates the response and restores input order via the
// per-item index.
func (c *JinaClient) collect(texts []string, resp openai.EmbeddingResponse) ([][]float32, error) {
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("provider returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("provider returned out-of-range embedding index %d", item.Index)
		}
		if len(item.Embedding) != c.dimensions {
			return nil, fmt.Errorf("provider returned dimension %d, expected %d", len(item.Embedding), c.dimensions)
		}
		vectors[item.Index] = item.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("provider returned no embedding for input %d", i)
		}
	}
	return vectors, nil
}

// retryable reports whether a provider error is worth retrying.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	// Transport-level failures (connection reset, timeout) have no
	// typed error; treat them as transient unless the context ended.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
