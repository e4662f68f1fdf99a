// File: internal/realtime/session.go
package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bazarino/bazarino/internal/services"
)

type sessionState int

const (
	stateUnauthenticated sessionState = iota
	stateAuthenticated
	stateClosed
)

var errAuthFailed = errors.New("authentication failed")

// SessionConfig carries the per-connection deadlines.
type SessionConfig struct {
	// AuthTimeout bounds how long a connection may stay unauthenticated.
	AuthTimeout time.Duration
	// ReadTimeout is the read deadline after authentication, refreshed by pongs.
	ReadTimeout time.Duration
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = 30 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	return c
}

// Session drives one connection through its lifecycle:
// Unauthenticated -> Authenticated -> Closed, with Unauthenticated -> Closed
// reachable on disconnect or a failed handshake. There is no way back from
// Authenticated; a repeated auth frame is rejected with an error frame.
type Session struct {
	sock     Socket
	conn     *Connection
	registry *Registry
	verifier TokenVerifier
	relay    *Relay
	logger   services.Logger
	cfg      SessionConfig

	// state and userID are only touched by the read-loop goroutine.
	state  sessionState
	userID uint
}

func NewSession(sock Socket, registry *Registry, verifier TokenVerifier, relay *Relay, logger services.Logger, cfg SessionConfig) *Session {
	return &Session{
		sock:     sock,
		conn:     NewConnection(sock),
		registry: registry,
		verifier: verifier,
		relay:    relay,
		logger:   logger,
		cfg:      cfg.withDefaults(),
	}
}

// Run processes frames until the client disconnects, the handshake fails or
// ctx is cancelled. It always leaves the registry clean before returning.
func (s *Session) Run(ctx context.Context) {
	s.conn.Start()
	defer s.shutdown()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.conn.Close(websocket.CloseGoingAway, "server shutting down")
		case <-stop:
		}
	}()

	s.sock.SetReadLimit(maxFrameBytes)
	_ = s.sock.SetReadDeadline(time.Now().Add(s.cfg.AuthTimeout))
	s.sock.SetPongHandler(func(string) error {
		return s.sock.SetReadDeadline(time.Now().Add(s.readDeadline()))
	})

	for {
		_, data, err := s.sock.ReadMessage()
		if err != nil {
			if !isExpectedClose(err) {
				s.logger.Debug("read loop terminated", "connection_id", s.conn.ID, "error", err)
			}
			return
		}
		_ = s.sock.SetReadDeadline(time.Now().Add(s.readDeadline()))

		frame, err := DecodeInbound(data)
		if err != nil {
			s.replyError(err.Error())
			continue
		}

		switch f := frame.(type) {
		case *AuthFrame:
			if err := s.handleAuth(f); err != nil {
				return
			}
		case *ChatMessageFrame:
			s.handleChatMessage(ctx, f)
		}
	}
}

// handleAuth performs the handshake. A non-nil return means the connection
// must be closed; every other outcome keeps the session alive.
func (s *Session) handleAuth(frame *AuthFrame) error {
	if s.state == stateAuthenticated {
		s.replyError("already authenticated")
		return nil
	}

	userID, err := s.verifier.Verify(frame.Token)
	if err != nil {
		s.logger.Warn("websocket handshake rejected", "connection_id", s.conn.ID, "error", err)
		s.replyAuthResult(false)
		return errAuthFailed
	}

	s.userID = userID
	s.conn.UserID = userID
	s.state = stateAuthenticated

	if replaced := s.registry.Bind(userID, s.conn); replaced != nil {
		// The old socket stays open but no longer receives routed frames.
		s.logger.Info("replaced existing connection for user",
			"user_id", userID, "old_connection_id", replaced.ID, "connection_id", s.conn.ID)
	}

	_ = s.sock.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	s.replyAuthResult(true)
	s.logger.Info("websocket authenticated", "user_id", userID, "connection_id", s.conn.ID)
	return nil
}

func (s *Session) handleChatMessage(ctx context.Context, frame *ChatMessageFrame) {
	if s.state != stateAuthenticated {
		s.replyError("authentication required")
		return
	}

	if _, err := s.relay.Send(ctx, s.conn, s.userID, frame.ChatID, frame.Content); err != nil {
		var relayErr *RelayError
		if errors.As(err, &relayErr) {
			s.replyError(relayErr.Message)
			return
		}
		s.replyError("message could not be processed")
	}
}

// shutdown moves the session to Closed and clears its registry entry. The
// unbind is a no-op when the session never authenticated or was already
// replaced by a newer connection.
func (s *Session) shutdown() {
	if s.state == stateAuthenticated {
		s.registry.Unbind(s.userID, s.conn)
		s.logger.Info("websocket disconnected", "user_id", s.userID, "connection_id", s.conn.ID)
	}
	s.state = stateClosed
	s.conn.Close(websocket.CloseNormalClosure, "session closed")
}

func (s *Session) readDeadline() time.Duration {
	if s.state == stateAuthenticated {
		return s.cfg.ReadTimeout
	}
	return s.cfg.AuthTimeout
}

func (s *Session) replyAuthResult(success bool) {
	if payload, err := EncodeAuthResult(success); err == nil {
		_ = s.conn.Send(payload)
	}
}

func (s *Session) replyError(description string) {
	if payload, err := EncodeError(description); err == nil {
		_ = s.conn.Send(payload)
	}
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived) ||
		errors.Is(err, websocket.ErrCloseSent)
}
