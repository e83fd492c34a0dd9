package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
)

// HistoryStore records per-session chat messages.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, msg models.ChatMessage) error
	History(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	Clear(ctx context.Context, sessionID string) error
}

// Searcher retrieves ranked article chunks for a query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// Service answers chat messages by retrieving relevant article chunks
// and handing them to the generator as context.
type Service struct {
	history   HistoryStore
	searcher  Searcher
	generator Generator
	topK      int
	logger    *zap.Logger
}

// NewService creates a chat service. topK is how many chunks are
// retrieved as context per message.
func NewService(history HistoryStore, searcher Searcher, generator Generator, topK int, logger *zap.Logger) *Service {
	if topK <= 0 {
		topK = 5
	}
	return &Service{
		history:   history,
		searcher:  searcher,
		generator: generator,
		topK:      topK,
		logger:    logger,
	}
}

// Chat records the user message, retrieves context, generates an
// answer, records it, and returns it.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message cannot be empty")
	}
	if err := s.history.Append(ctx, sessionID, models.ChatMessage{
		Type:      models.MessageTypeUser,
		Content:   message,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("store user message: %w", err)
	}

	results, err := s.searcher.Search(ctx, message, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Payload.Text)
	}
	newsContext := strings.Join(texts, "\n\n")

	answer, err := s.generator.Generate(ctx, message, newsContext)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	if err := s.history.Append(ctx, sessionID, models.ChatMessage{
		Type:      models.MessageTypeBot,
		Content:   answer,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("store bot message: %w", err)
	}
	s.logger.Debug("chat answered",
		zap.String("session", sessionID),
		zap.Int("context_chunks", len(results)))
	return answer, nil
}

// History returns the session's messages in chronological order.
func (s *Service) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return s.history.History(ctx, sessionID)
}

// ClearHistory removes the session's history.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) error {
	return s.history.Clear(ctx, sessionID)
}
