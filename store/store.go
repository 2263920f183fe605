// Package store persists conversation history. Stores are keyed by the
// chat ID carried in the context via chatmodel.ChatContext.
package store

import (
	"context"
	"time"

	"github.com/funcall-ai/funcall/pkg/llms"
)

// MessageStore persists the messages of one chat.
type MessageStore interface {
	Messages(ctx context.Context) []llms.Message
	Add(ctx context.Context, msgs ...llms.Message) error
	Reset(ctx context.Context) error
}

// MessageStoreManager extends MessageStore with chat management.
type MessageStoreManager interface {
	MessageStore

	// UpdateChat creates or updates the chat title and metadata.
	UpdateChat(ctx context.Context, title string, metadata map[string]any) error
	// ListChats returns the IDs of the stored chats.
	ListChats(ctx context.Context) ([]string, error)
	// GetChatInfo returns the chat info with messages. An empty id means
	// the chat from the context.
	GetChatInfo(ctx context.Context, id string) (*ChatInfo, error)
	// Cleanup deletes chats not updated for the given duration and returns
	// the number of deleted chats.
	Cleanup(ctx context.Context, olderThan time.Duration) (uint32, error)
}

// ChatInfo describes one stored chat.
type ChatInfo struct {
	ChatID    string         `json:"chat_id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	Messages []llms.Message `json:"-"`
}
