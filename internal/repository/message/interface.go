// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/bazarino/bazarino/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.ChatMessage) (*domain.ChatMessage, error)
	FindByChatID(ctx context.Context, chatID uint) ([]domain.ChatMessage, error)
	FindByChatIDWithPagination(ctx context.Context, chatID uint, limit, offset int) ([]domain.ChatMessage, int64, error)
	// MarkReadByChatID flags every message in the chat not sent by readerID as
	// read and returns how many rows changed.
	MarkReadByChatID(ctx context.Context, chatID, readerID uint) (int64, error)
	CountUnreadByChatID(ctx context.Context, chatID, readerID uint) (int64, error)
	CountByChatID(ctx context.Context, chatID uint) (int64, error)
}
