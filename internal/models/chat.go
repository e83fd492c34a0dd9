package models

import "time"

// MessageType distinguishes who authored a chat message.
type MessageType string

const (
	MessageTypeUser MessageType = "user"
	MessageTypeBot  MessageType = "bot"
)

// ChatMessage is one entry in a session's append-only history.
type ChatMessage struct {
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}
