// File: internal/realtime/codec.go
package realtime

import (
	"encoding/json"
	"strconv"

	"github.com/bazarino/bazarino/internal/domain"
)

// Frame type discriminators carried in the "type" field of every frame.
const (
	frameTypeAuth        = "auth"
	frameTypeChatMessage = "chat_message"
	frameTypeNewMessage  = "new_message"
	frameTypeMessageSent = "message_sent"
	frameTypeError       = "error"
)

// InboundFrame is one of the closed set of client-to-server frames.
type InboundFrame interface {
	frameType() string
}

// AuthFrame is the first meaningful frame on a new connection.
type AuthFrame struct {
	Token string
}

func (*AuthFrame) frameType() string { return frameTypeAuth }

// ChatMessageFrame asks the server to relay a message into a conversation.
type ChatMessageFrame struct {
	ChatID  uint
	Content string
}

func (*ChatMessageFrame) frameType() string { return frameTypeChatMessage }

// DecodeError describes a frame that could not be decoded. It is reported to
// the originating connection and never terminates the session.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "invalid frame: " + e.Reason
}

// inboundEnvelope is the superset of all inbound frame fields. Per-type field
// requirements are enforced after the type switch.
type inboundEnvelope struct {
	Type    string `json:"type"`
	Token   string `json:"token"`
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

// DecodeInbound parses a single text frame into its typed variant. It is pure
// and side-effect-free; every failure mode returns a *DecodeError.
func DecodeInbound(data []byte) (InboundFrame, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Reason: "malformed JSON"}
	}

	switch env.Type {
	case frameTypeAuth:
		if env.Token == "" {
			return nil, &DecodeError{Reason: "auth frame requires token"}
		}
		return &AuthFrame{Token: env.Token}, nil

	case frameTypeChatMessage:
		if env.ChatID == "" {
			return nil, &DecodeError{Reason: "chat_message frame requires chatId"}
		}
		if env.Content == "" {
			return nil, &DecodeError{Reason: "chat_message frame requires content"}
		}
		chatID, err := strconv.ParseUint(env.ChatID, 10, 32)
		if err != nil || chatID == 0 {
			return nil, &DecodeError{Reason: "chatId must be a positive numeric id"}
		}
		return &ChatMessageFrame{ChatID: uint(chatID), Content: env.Content}, nil

	case "":
		return nil, &DecodeError{Reason: "missing frame type"}

	default:
		return nil, &DecodeError{Reason: "unknown frame type: " + env.Type}
	}
}

type authResultFrame struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type newMessageFrame struct {
	Type    string              `json:"type"`
	ChatID  string              `json:"chatId"`
	Message *domain.ChatMessage `json:"message"`
}

type messageSentFrame struct {
	Type    string              `json:"type"`
	Message *domain.ChatMessage `json:"message"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EncodeAuthResult serializes the server's answer to an auth frame.
func EncodeAuthResult(success bool) ([]byte, error) {
	status := "failed"
	if success {
		status = "success"
	}
	return json.Marshal(authResultFrame{Type: frameTypeAuth, Status: status})
}

// EncodeNewMessage serializes the frame pushed to the recipient of a relayed message.
func EncodeNewMessage(msg *domain.ChatMessage) ([]byte, error) {
	return json.Marshal(newMessageFrame{
		Type:    frameTypeNewMessage,
		ChatID:  strconv.FormatUint(uint64(msg.ChatID), 10),
		Message: msg,
	})
}

// EncodeMessageSent serializes the persistence confirmation pushed back to the sender.
func EncodeMessageSent(msg *domain.ChatMessage) ([]byte, error) {
	return json.Marshal(messageSentFrame{Type: frameTypeMessageSent, Message: msg})
}

// EncodeError serializes an error frame. The connection stays open after it.
func EncodeError(description string) ([]byte, error) {
	return json.Marshal(errorFrame{Type: frameTypeError, Message: description})
}
