// File: internal/realtime/interface.go
package realtime

import (
	"context"
	"time"

	"github.com/bazarino/bazarino/internal/domain"
)

// TokenVerifier validates the bearer credential from an auth frame and
// resolves it to a user identity. Expired, forged and revoked credentials
// must be rejected with an error.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// ChatStore is the conversation persistence collaborator consumed by the
// relay. FindByID returns ErrConversationNotFound (possibly wrapped) when no
// conversation exists for the id.
type ChatStore interface {
	FindByID(ctx context.Context, chatID uint) (*domain.Chat, error)
	TouchLastMessage(ctx context.Context, chatID uint, at time.Time) error
}

// MessageStore is the message persistence collaborator consumed by the relay.
type MessageStore interface {
	Create(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error)
}
