package realtime

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bazarino/bazarino/internal/domain"
	"github.com/bazarino/bazarino/internal/services"
)

// fakeSocket scripts inbound frames through a channel and records outbound
// text frames for assertions.
type fakeSocket struct {
	inbound chan []byte
	writes  chan []byte

	mu     sync.Mutex
	closed bool
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		inbound: make(chan []byte, 16),
		writes:  make(chan []byte, 16),
	}
}

func (f *fakeSocket) push(frame string) { f.inbound <- []byte(frame) }

func (f *fakeSocket) finish() { close(f.inbound) }

func (f *fakeSocket) ReadMessage() (int, []byte, error) {
	data, ok := <-f.inbound
	if !ok {
		return 0, nil, io.EOF
	}
	return websocket.TextMessage, data, nil
}

func (f *fakeSocket) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return errors.New("socket closed")
	}
	if messageType == websocket.TextMessage {
		f.writes <- data
	}
	return nil
}

func (f *fakeSocket) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (f *fakeSocket) SetReadDeadline(t time.Time) error  { return nil }
func (f *fakeSocket) SetWriteDeadline(t time.Time) error { return nil }
func (f *fakeSocket) SetReadLimit(limit int64)           {}
func (f *fakeSocket) SetPongHandler(h func(string) error) {}

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// fakeChatStore serves chats from a map.
type fakeChatStore struct {
	mu      sync.Mutex
	chats   map[uint]*domain.Chat
	touched map[uint]time.Time
	findErr error
	touchErr error
}

func newFakeChatStore(chats ...*domain.Chat) *fakeChatStore {
	s := &fakeChatStore{
		chats:   make(map[uint]*domain.Chat),
		touched: make(map[uint]time.Time),
	}
	for _, c := range chats {
		s.chats[c.ID] = c
	}
	return s
}

func (s *fakeChatStore) FindByID(ctx context.Context, chatID uint) (*domain.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	c, ok := s.chats[chatID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return c, nil
}

func (s *fakeChatStore) TouchLastMessage(ctx context.Context, chatID uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touchErr != nil {
		return s.touchErr
	}
	s.touched[chatID] = at
	return nil
}

func (s *fakeChatStore) touchedAt(chatID uint) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.touched[chatID]
	return at, ok
}

// fakeMessageStore persists messages into a slice.
type fakeMessageStore struct {
	mu        sync.Mutex
	messages  []*domain.ChatMessage
	nextID    uint
	createErr error
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{nextID: 1}
}

func (s *fakeMessageStore) Create(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	msg.ID = s.nextID
	msg.CreatedAt = time.Now()
	s.nextID++
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *fakeMessageStore) all() []*domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// fakeVerifier resolves tokens from a static map.
type fakeVerifier struct {
	tokens map[string]uint
}

func (v *fakeVerifier) Verify(token string) (uint, error) {
	userID, ok := v.tokens[token]
	if !ok {
		return 0, errors.New("invalid token")
	}
	return userID, nil
}

func noopLogger() services.Logger { return &services.NoOpLogger{} }
