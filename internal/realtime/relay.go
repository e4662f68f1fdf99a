// File: internal/realtime/relay.go
package realtime

import (
	"context"
	"errors"

	"github.com/bazarino/bazarino/internal/domain"
	"github.com/bazarino/bazarino/internal/services"
)

// Relay persists inbound chat messages and forwards them to the recipient's
// live connection when one is bound. Persistence always happens before any
// forwarding; a message that failed to persist is never pushed anywhere.
type Relay struct {
	chats    ChatStore
	messages MessageStore
	registry *Registry
	logger   services.Logger
}

func NewRelay(chats ChatStore, messages MessageStore, registry *Registry, logger services.Logger) *Relay {
	return &Relay{
		chats:    chats,
		messages: messages,
		registry: registry,
		logger:   logger,
	}
}

// Send relays one message from an authenticated sender into a conversation.
// On success the persisted message is returned, the recipient (if connected)
// has been pushed a new_message frame and the sender a message_sent frame.
// On failure a *RelayError is returned and nothing has been forwarded.
func (r *Relay) Send(ctx context.Context, sender *Connection, senderID, chatID uint, content string) (*domain.ChatMessage, error) {
	chat, err := r.chats.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return nil, NewUnknownConversationError(chatID)
		}
		r.logger.Error("conversation lookup failed", "chat_id", chatID, "error", err)
		return nil, NewPersistenceError("conversation lookup", chatID, err)
	}

	if !chat.HasParticipant(senderID) {
		r.logger.Warn("relay rejected for non-participant",
			"chat_id", chatID, "sender_id", senderID)
		return nil, NewNotParticipantError(senderID, chatID)
	}

	msg, err := r.messages.Create(ctx, &domain.ChatMessage{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	})
	if err != nil {
		r.logger.Error("message persistence failed", "chat_id", chatID, "sender_id", senderID, "error", err)
		return nil, NewPersistenceError("message create", chatID, err)
	}

	if err := r.chats.TouchLastMessage(ctx, chatID, msg.CreatedAt); err != nil {
		r.logger.Error("conversation touch failed", "chat_id", chatID, "error", err)
		return nil, NewPersistenceError("conversation touch", chatID, err)
	}

	// The message is durable from here on; live delivery is best effort and
	// its failures never reach the sender.
	r.deliverToRecipient(chat.OtherParticipant(senderID), msg)
	r.confirmToSender(sender, msg)

	return msg, nil
}

func (r *Relay) deliverToRecipient(recipientID uint, msg *domain.ChatMessage) {
	conn, ok := r.registry.Lookup(recipientID)
	if !ok {
		r.logger.Debug("recipient not connected, skipping live delivery",
			"chat_id", msg.ChatID, "recipient_id", recipientID)
		return
	}

	payload, err := EncodeNewMessage(msg)
	if err != nil {
		r.logger.Error("failed to encode new_message frame", "chat_id", msg.ChatID, "error", err)
		return
	}

	if err := conn.Send(payload); err != nil {
		r.logger.Warn("live delivery failed, recipient will see the message on next fetch",
			"chat_id", msg.ChatID, "recipient_id", recipientID, "error", err)
	}
}

func (r *Relay) confirmToSender(sender *Connection, msg *domain.ChatMessage) {
	payload, err := EncodeMessageSent(msg)
	if err != nil {
		r.logger.Error("failed to encode message_sent frame", "chat_id", msg.ChatID, "error", err)
		return
	}

	if err := sender.Send(payload); err != nil {
		r.logger.Warn("sender confirmation push failed",
			"chat_id", msg.ChatID, "sender_id", msg.SenderID, "error", err)
	}
}
