// File: internal/handlers/ws_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bazarino/bazarino/internal/domain"
	"github.com/bazarino/bazarino/internal/realtime"
	chatrepo "github.com/bazarino/bazarino/internal/repository/chat"
	messagerepo "github.com/bazarino/bazarino/internal/repository/message"
	"github.com/bazarino/bazarino/internal/services"
	"github.com/bazarino/bazarino/internal/services/user_services"
)

// WSHandler upgrades HTTP connections and hands them to a realtime session.
// There is no HTTP-level auth here: clients authenticate over the wire with
// their first frame.
type WSHandler struct {
	upgrader websocket.Upgrader
	registry *realtime.Registry
	relay    *realtime.Relay
	verifier realtime.TokenVerifier
	logger   services.Logger
	cfg      realtime.SessionConfig
}

func NewWSHandler(registry *realtime.Registry, relay *realtime.Relay, verifier realtime.TokenVerifier, logger services.Logger, authTimeout, readTimeout time.Duration) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// CORS middleware already allows all origins for the REST API;
				// the websocket endpoint follows the same policy.
				return true
			},
		},
		registry: registry,
		relay:    relay,
		verifier: verifier,
		logger:   logger,
		cfg: realtime.SessionConfig{
			AuthTimeout: authTimeout,
			ReadTimeout: readTimeout,
		},
	}
}

// Serve handles GET /ws.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Warn("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	session := realtime.NewSession(ws, h.registry, h.verifier, h.relay, h.logger, h.cfg)
	session.Run(r.Context())
}

// jwtVerifier adapts the auth service to the realtime TokenVerifier contract.
type jwtVerifier struct {
	auth *user_services.AuthService
}

func NewJWTVerifier(auth *user_services.AuthService) realtime.TokenVerifier {
	return &jwtVerifier{auth: auth}
}

func (v *jwtVerifier) Verify(token string) (uint, error) {
	return v.auth.ValidateJWTToken(token)
}

// chatStoreAdapter maps the chat repository onto the relay's ChatStore
// contract, translating the repository sentinel into the realtime one.
type chatStoreAdapter struct {
	repo chatrepo.ChatRepository
}

func NewChatStore(repo chatrepo.ChatRepository) realtime.ChatStore {
	return &chatStoreAdapter{repo: repo}
}

func (a *chatStoreAdapter) FindByID(ctx context.Context, chatID uint) (*domain.Chat, error) {
	c, err := a.repo.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, chatrepo.ErrChatNotFound) {
			return nil, realtime.ErrConversationNotFound
		}
		return nil, err
	}
	return c, nil
}

func (a *chatStoreAdapter) TouchLastMessage(ctx context.Context, chatID uint, at time.Time) error {
	return a.repo.TouchLastMessage(ctx, chatID, at)
}

// messageStoreAdapter narrows the message repository to what the relay needs.
type messageStoreAdapter struct {
	repo messagerepo.MessageRepository
}

func NewMessageStore(repo messagerepo.MessageRepository) realtime.MessageStore {
	return &messageStoreAdapter{repo: repo}
}

func (a *messageStoreAdapter) Create(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	return a.repo.Create(ctx, msg)
}
