package chat

import (
	"context"
	"time"

	"github.com/bazarino/bazarino/internal/domain"
)

// ChatRepository handles conversation data operations.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, chatID uint) (*domain.Chat, error)
	FindByTriple(ctx context.Context, buyerID, sellerID, listingID uint) (*domain.Chat, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Chat, error)
	TouchLastMessage(ctx context.Context, chatID uint, at time.Time) error
	ExistsByIDAndParticipant(ctx context.Context, chatID, userID uint) (bool, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
}
