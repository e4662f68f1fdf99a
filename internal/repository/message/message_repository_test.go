package message

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bazarino/bazarino/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.ChatMessage{}))
	return db
}

func seedMessages(t *testing.T, repo MessageRepository, chatID uint, senders ...uint) []*domain.ChatMessage {
	t.Helper()
	out := make([]*domain.ChatMessage, 0, len(senders))
	for i, senderID := range senders {
		msg, err := repo.Create(context.Background(), &domain.ChatMessage{
			ChatID:   chatID,
			SenderID: senderID,
			Content:  fmt.Sprintf("message %d", i+1),
		})
		require.NoError(t, err)
		out = append(out, msg)
	}
	return out
}

func TestMessageRepositoryCreate(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	msg, err := repo.Create(ctx, &domain.ChatMessage{ChatID: 1, SenderID: 10, Content: "hello"})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.IsRead)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestMessageRepositoryCreateValidation(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name string
		msg  *domain.ChatMessage
	}{
		{"nil message", nil},
		{"missing chat", &domain.ChatMessage{SenderID: 10, Content: "x"}},
		{"missing sender", &domain.ChatMessage{ChatID: 1, Content: "x"}},
		{"empty content", &domain.ChatMessage{ChatID: 1, SenderID: 10}},
		{"oversized content", &domain.ChatMessage{ChatID: 1, SenderID: 10, Content: strings.Repeat("a", maxContentLength+1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tc.msg)
			assert.Error(t, err)
		})
	}
}

func TestMessageRepositoryFindByChatIDOrdering(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	seedMessages(t, repo, 1, 10, 20, 10)
	seedMessages(t, repo, 2, 30)

	messages, err := repo.FindByChatID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Creation order is preserved even when timestamps collide.
	assert.Equal(t, "message 1", messages[0].Content)
	assert.Equal(t, "message 2", messages[1].Content)
	assert.Equal(t, "message 3", messages[2].Content)
	for i := 1; i < len(messages); i++ {
		assert.Greater(t, messages[i].ID, messages[i-1].ID)
	}
}

func TestMessageRepositoryPagination(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	seedMessages(t, repo, 1, 10, 20, 10, 20, 10)
	ctx := context.Background()

	page, total, err := repo.FindByChatIDWithPagination(ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, "message 1", page[0].Content)

	page, total, err = repo.FindByChatIDWithPagination(ctx, 1, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 1)
	assert.Equal(t, "message 5", page[0].Content)

	_, _, err = repo.FindByChatIDWithPagination(ctx, 1, 0, 0)
	assert.Error(t, err)
	_, _, err = repo.FindByChatIDWithPagination(ctx, 1, 10, -1)
	assert.Error(t, err)
}

func TestMessageRepositoryMarkReadByChatID(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	// Two from the counterpart, one own message.
	seedMessages(t, repo, 1, 20, 20, 10)
	ctx := context.Background()

	affected, err := repo.MarkReadByChatID(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	// Own messages keep their flag, repeated call is a no-op.
	affected, err = repo.MarkReadByChatID(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, affected)

	messages, err := repo.FindByChatID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, messages[0].IsRead)
	assert.True(t, messages[1].IsRead)
	assert.False(t, messages[2].IsRead)
}

func TestMessageRepositoryCountUnreadByChatID(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	seedMessages(t, repo, 1, 20, 20, 10)
	ctx := context.Background()

	unread, err := repo.CountUnreadByChatID(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	// From the counterpart's perspective only the own-sent message is unread.
	unread, err = repo.CountUnreadByChatID(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	count, err := repo.CountByChatID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
