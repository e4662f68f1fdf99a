// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/bazarino/bazarino/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

const maxContentLength = 10000

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create - Enhanced with input validation and secure logging
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.ChatMessage) (*domain.ChatMessage, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		log.Printf("[MessageRepository] Database error during message creation for chat ID %d: %v", message.ChatID, err)
		return nil, errors.New("database error creating message")
	}

	log.Printf("[MessageRepository] Message created successfully with ID: %d in chat: %d", message.ID, message.ChatID)
	return message, nil
}

// FindByChatID - loads every message of a chat in creation order.
func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID uint) ([]domain.ChatMessage, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	var messages []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for chat ID %d: %v", chatID, err)
		return nil, errors.New("database error fetching messages")
	}

	return messages, nil
}

// FindByChatIDWithPagination - Memory safety: prevents OOM with large histories
func (r *gormMessageRepository) FindByChatIDWithPagination(ctx context.Context, chatID uint, limit, offset int) ([]domain.ChatMessage, int64, error) {
	if chatID == 0 {
		return nil, 0, errors.New("invalid chat ID")
	}

	if limit <= 0 || limit > 1000 {
		return nil, 0, errors.New("invalid limit: must be between 1 and 1000")
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be >= 0")
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("chat_id = ?", chatID).Count(&total).Error; err != nil {
		log.Printf("[MessageRepository] Database error counting messages for chat ID %d: %v", chatID, err)
		return nil, 0, errors.New("database error counting messages")
	}

	var messages []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error in paginated query for chat ID %d: %v", chatID, err)
		return nil, 0, errors.New("database error retrieving paginated messages")
	}

	return messages, total, nil
}

// MarkReadByChatID - the read-receipt operation of the non-realtime read path.
func (r *gormMessageRepository) MarkReadByChatID(ctx context.Context, chatID, readerID uint) (int64, error) {
	if chatID == 0 || readerID == 0 {
		return 0, errors.New("invalid chat ID or reader ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Update("is_read", true)

	if result.Error != nil {
		log.Printf("[MessageRepository] Database error marking messages read for chat ID %d: %v", chatID, result.Error)
		return 0, errors.New("database error marking messages read")
	}

	return result.RowsAffected, nil
}

// CountUnreadByChatID - Analytics: unread badge for the conversation list
func (r *gormMessageRepository) CountUnreadByChatID(ctx context.Context, chatID, readerID uint) (int64, error) {
	if chatID == 0 || readerID == 0 {
		return 0, errors.New("invalid chat ID or reader ID")
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting unread messages for chat ID %d: %v", chatID, err)
		return 0, errors.New("database error counting unread messages")
	}

	return count, nil
}

// CountByChatID - Performance: efficient message counting
func (r *gormMessageRepository) CountByChatID(ctx context.Context, chatID uint) (int64, error) {
	if chatID == 0 {
		return 0, errors.New("invalid chat ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for chat ID %d: %v", chatID, err)
		return 0, errors.New("database error counting messages")
	}

	return count, nil
}

// ===== SECURITY VALIDATION HELPERS =====

func (r *gormMessageRepository) validateMessageInput(message *domain.ChatMessage) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ChatID == 0 {
		return errors.New("chat ID is required")
	}
	if message.SenderID == 0 {
		return errors.New("sender ID is required")
	}
	if message.Content == "" {
		return errors.New("content is required")
	}
	if len(message.Content) > maxContentLength {
		return fmt.Errorf("content must be %d characters or less", maxContentLength)
	}
	return nil
}
