package chat

import (
	"context"
	"errors"

	"github.com/bazarino/bazarino/internal/domain"
	chatrepo "github.com/bazarino/bazarino/internal/repository/chat"
	listingrepo "github.com/bazarino/bazarino/internal/repository/listing"
	messagerepo "github.com/bazarino/bazarino/internal/repository/message"
)

const defaultPageSize = 50

// Service implements Provider on top of the gorm repositories.
type Service struct {
	chatRepo    chatrepo.ChatRepository
	messageRepo messagerepo.MessageRepository
	listingRepo listingrepo.ListingRepository
	logger      Logger
}

func NewService(chatRepo chatrepo.ChatRepository, messageRepo messagerepo.MessageRepository, listingRepo listingrepo.ListingRepository, logger Logger) *Service {
	return &Service{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		listingRepo: listingRepo,
		logger:      logger,
	}
}

// StartChat opens (or finds) the single conversation between the caller and
// the listing's seller. The boolean reports whether a new chat was created.
func (s *Service) StartChat(ctx context.Context, buyerID, listingID uint) (*domain.Chat, bool, error) {
	if buyerID == 0 || listingID == 0 {
		return nil, false, NewValidationError("start chat", "buyer and listing are required")
	}

	l, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, listingrepo.ErrListingNotFound) {
			return nil, false, NewValidationError("start chat", "listing does not exist")
		}
		s.logger.Error("listing lookup failed", "listing_id", listingID, "error", err)
		return nil, false, NewPersistenceError("listing lookup", err)
	}

	if l.SellerID == buyerID {
		return nil, false, NewValidationError("start chat", "cannot open a chat about your own listing")
	}
	if l.Status != domain.ListingStatusActive {
		return nil, false, NewValidationError("start chat", "listing is no longer active")
	}

	// Look up before creating: at most one chat per (buyer, seller, listing).
	existing, err := s.chatRepo.FindByTriple(ctx, buyerID, l.SellerID, listingID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, chatrepo.ErrChatNotFound) {
		s.logger.Error("chat lookup failed", "listing_id", listingID, "buyer_id", buyerID, "error", err)
		return nil, false, NewPersistenceError("chat lookup", err)
	}

	created, err := s.chatRepo.Create(ctx, &domain.Chat{
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  l.SellerID,
	})
	if err != nil {
		s.logger.Error("chat creation failed", "listing_id", listingID, "buyer_id", buyerID, "error", err)
		return nil, false, NewPersistenceError("chat create", err)
	}

	s.logger.Info("chat created",
		"chat_id", created.ID, "listing_id", listingID,
		"buyer_id", buyerID, "seller_id", l.SellerID)
	return created, true, nil
}

// GetUserChats returns the caller's conversations, most recently active
// first, each with its unread count.
func (s *Service) GetUserChats(ctx context.Context, userID uint) ([]Summary, error) {
	if userID == 0 {
		return nil, NewValidationError("list chats", "user is required")
	}

	chats, err := s.chatRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, NewPersistenceError("chat list", err)
	}

	summaries := make([]Summary, 0, len(chats))
	for _, c := range chats {
		unread, err := s.messageRepo.CountUnreadByChatID(ctx, c.ID, userID)
		if err != nil {
			// A broken badge should not hide the conversation list.
			s.logger.Warn("unread count failed", "chat_id", c.ID, "error", err)
			unread = 0
		}
		summaries = append(summaries, Summary{Chat: c, UnreadCount: unread})
	}

	return summaries, nil
}

// GetChatMessages returns a page of conversation history and marks the other
// party's messages as read. Only participants may read a conversation.
func (s *Service) GetChatMessages(ctx context.Context, chatID, userID uint, limit, offset int) ([]domain.ChatMessage, int64, error) {
	if chatID == 0 || userID == 0 {
		return nil, 0, NewValidationError("chat history", "chat and user are required")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	isParticipant, err := s.chatRepo.ExistsByIDAndParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, 0, NewPersistenceError("participant check", err)
	}
	if !isParticipant {
		s.logger.Warn("history access denied", "chat_id", chatID, "user_id", userID)
		return nil, 0, NewUnauthorizedError(userID, chatID)
	}

	messages, total, err := s.messageRepo.FindByChatIDWithPagination(ctx, chatID, limit, offset)
	if err != nil {
		return nil, 0, NewPersistenceError("history fetch", err)
	}

	if _, err := s.messageRepo.MarkReadByChatID(ctx, chatID, userID); err != nil {
		// Read receipts are best effort; the history itself was served.
		s.logger.Warn("read receipt update failed", "chat_id", chatID, "user_id", userID, "error", err)
	}

	return messages, total, nil
}
