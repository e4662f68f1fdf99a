package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/bazarino/bazarino/internal/domain"
)

var ErrChatNotFound = errors.New("chat not found")

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

// Create - Enhanced with input validation and secure logging
func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if err := r.validateChatInput(chat); err != nil {
		log.Printf("[ChatRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Create(chat).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error during chat creation for listing ID %d: %v", chat.ListingID, err)
		return nil, errors.New("database error creating chat")
	}

	log.Printf("[ChatRepository] Chat created successfully with ID: %d (buyer %d, seller %d, listing %d)",
		chat.ID, chat.BuyerID, chat.SellerID, chat.ListingID)
	return chat, nil
}

// FindByID - Enhanced with secure error handling
func (r *gormChatRepository) FindByID(ctx context.Context, chatID uint) (*domain.Chat, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).First(&chat, chatID).Error
	return r.handleFindError(err, &chat, "FindByID")
}

// FindByTriple looks up the single chat for a (buyer, seller, listing) triple.
// At most one such chat exists; callers must use this before Create.
func (r *gormChatRepository) FindByTriple(ctx context.Context, buyerID, sellerID, listingID uint) (*domain.Chat, error) {
	if buyerID == 0 || sellerID == 0 || listingID == 0 {
		return nil, errors.New("invalid chat participants or listing")
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND seller_id = ? AND listing_id = ?", buyerID, sellerID, listingID).
		First(&chat).Error
	return r.handleFindError(err, &chat, "FindByTriple")
}

// FindByUserID returns every chat the user participates in, most recently
// active first.
func (r *gormChatRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Chat, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("last_message_at DESC, id DESC").
		Find(&chats).Error

	if err != nil {
		log.Printf("[ChatRepository] Database error finding chats for user ID %d: %v", userID, err)
		return nil, errors.New("database error fetching chats")
	}

	return chats, nil
}

// TouchLastMessage - moves the conversation to the top of every participant's
// inbox by stamping the latest message time.
func (r *gormChatRepository) TouchLastMessage(ctx context.Context, chatID uint, at time.Time) error {
	if chatID == 0 {
		return errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("last_message_at", at)

	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating last message time for chat ID %d: %v", chatID, result.Error)
		return errors.New("database error updating chat timestamp")
	}

	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}

	return nil
}

// ExistsByIDAndParticipant - Security: participation check without data exposure
func (r *gormChatRepository) ExistsByIDAndParticipant(ctx context.Context, chatID, userID uint) (bool, error) {
	if chatID == 0 || userID == 0 {
		return false, errors.New("invalid chat ID or user ID")
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ? AND (buyer_id = ? OR seller_id = ?)", chatID, userID, userID).
		Count(&count).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error checking chat participation for chat ID %d, user ID %d: %v", chatID, userID, err)
		return false, errors.New("database error checking chat participation")
	}

	return count > 0, nil
}

// CountByUserID - Performance: efficient user chat counting
func (r *gormChatRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, errors.New("invalid user ID")
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Count(&count).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error counting chats for user ID %d: %v", userID, err)
		return 0, errors.New("database error counting user chats")
	}

	return count, nil
}

// ===== SECURITY VALIDATION HELPERS =====

func (r *gormChatRepository) validateChatInput(chat *domain.Chat) error {
	if chat == nil {
		return errors.New("chat cannot be nil")
	}
	if chat.BuyerID == 0 || chat.SellerID == 0 {
		return errors.New("both participants are required")
	}
	if chat.BuyerID == chat.SellerID {
		return errors.New("buyer and seller must differ")
	}
	if chat.ListingID == 0 {
		return errors.New("listing ID is required")
	}
	return nil
}

// ===== ERROR HANDLING HELPERS =====

// handleFindError - Secure error handling without data leakage
func (r *gormChatRepository) handleFindError(err error, chat *domain.Chat, operation string) (*domain.Chat, error) {
	if err == nil {
		return chat, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}

	log.Printf("[ChatRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
