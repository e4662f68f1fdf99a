// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bazarino/bazarino/internal/middleware"
	"github.com/bazarino/bazarino/internal/services/chat"
)

type ChatHandler struct {
	ChatService chat.Provider
}

func NewChatHandler(service chat.Provider) *ChatHandler {
	return &ChatHandler{ChatService: service}
}

// GetUserChats handles the request to retrieve the caller's conversations.
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.ChatService.GetUserChats(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// StartChat opens (or returns) the conversation between the caller and the
// seller of a listing.
func (h *ChatHandler) StartChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ListingID uint `json:"listing_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, created, err := h.ChatService.StartChat(r.Context(), userID, req.ListingID)
	if err != nil {
		var chatErr *chat.ChatError
		if errors.As(err, &chatErr) && chatErr.Type == chat.ErrTypeValidation {
			writeError(w, chatErr.Message, http.StatusBadRequest)
			return
		}
		writeError(w, "Could not start chat", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"chat":    c,
		"created": created,
	})
}

// GetChatMessages handles the request to retrieve a page of conversation
// history. Serving the page also marks the other party's messages read.
func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	messages, total, err := h.ChatService.GetChatMessages(r.Context(), chatID, userID, limit, offset)
	if err != nil {
		var chatErr *chat.ChatError
		if errors.As(err, &chatErr) && chatErr.Type == chat.ErrTypeUnauthorized {
			writeError(w, "Unauthorized", http.StatusForbidden)
			return
		}
		writeError(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"total":    total,
	})
}
