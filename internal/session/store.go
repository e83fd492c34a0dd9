// Package session stores per-session chat history in Redis.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
)

// Store keeps an append-only message list per session. Every write
// refreshes the session's expiry, so an idle session disappears after
// the configured TTL.
type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore creates a session store. ttl bounds how long an idle
// session's history is retained.
func NewStore(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl, logger: logger}
}

// Connect parses a Redis URL and returns a connected client.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:messages", sessionID)
}

// Append adds a message to the session's history and refreshes its TTL.
func (s *Store) Append(ctx context.Context, sessionID string, msg models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	key := sessionKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store message: %w", err)
	}
	return nil
}

// History returns the session's messages in chronological order.
// Messages are pushed to the head of the list, so the stored order is
// reversed on read.
func (s *Store) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	raw, err := s.rdb.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	messages := make([]models.ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			s.logger.Warn("skipping malformed history entry",
				zap.String("session", sessionID), zap.Error(err))
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Clear removes the session's entire history.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
