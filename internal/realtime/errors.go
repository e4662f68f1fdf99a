// File: internal/realtime/errors.go
package realtime

import (
	"errors"
	"fmt"
)

// ErrConversationNotFound must be returned (possibly wrapped) by ChatStore
// implementations when the requested conversation does not exist.
var ErrConversationNotFound = errors.New("conversation not found")

type ErrorType string

const (
	ErrTypeUnknownConversation ErrorType = "UNKNOWN_CONVERSATION"
	ErrTypeNotParticipant      ErrorType = "NOT_PARTICIPANT"
	ErrTypePersistence         ErrorType = "PERSISTENCE"
)

// RelayError describes why a single relay attempt failed. Message is safe to
// show the sender; Cause carries the technical detail for logs.
type RelayError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    uint
	UserID    uint
	Cause     error
}

func (e *RelayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("relay %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("relay %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *RelayError) Unwrap() error { return e.Cause }

func NewUnknownConversationError(chatID uint) *RelayError {
	return &RelayError{
		Type:      ErrTypeUnknownConversation,
		Operation: "conversation lookup",
		Message:   "unknown conversation",
		ChatID:    chatID,
	}
}

func NewNotParticipantError(userID, chatID uint) *RelayError {
	return &RelayError{
		Type:      ErrTypeNotParticipant,
		Operation: "authorization",
		Message:   "sender is not a participant in this conversation",
		ChatID:    chatID,
		UserID:    userID,
	}
}

func NewPersistenceError(operation string, chatID uint, cause error) *RelayError {
	return &RelayError{
		Type:      ErrTypePersistence,
		Operation: operation,
		Message:   "message could not be processed",
		ChatID:    chatID,
		Cause:     cause,
	}
}
