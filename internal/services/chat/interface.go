package chat

import (
	"context"

	"github.com/bazarino/bazarino/internal/domain"
)

// Logger interface for the chat service
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Summary pairs a conversation with its unread badge for the caller.
type Summary struct {
	Chat        domain.Chat `json:"chat"`
	UnreadCount int64       `json:"unread_count"`
}

// Provider is the non-realtime conversation surface: lazy conversation
// creation and the history read path the live relay falls back on.
type Provider interface {
	StartChat(ctx context.Context, buyerID, listingID uint) (*domain.Chat, bool, error)
	GetUserChats(ctx context.Context, userID uint) ([]Summary, error)
	GetChatMessages(ctx context.Context, chatID, userID uint, limit, offset int) ([]domain.ChatMessage, int64, error)
}
