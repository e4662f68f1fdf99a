package chat

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bazarino/bazarino/internal/domain"
	chatrepo "github.com/bazarino/bazarino/internal/repository/chat"
	listingrepo "github.com/bazarino/bazarino/internal/repository/listing"
	messagerepo "github.com/bazarino/bazarino/internal/repository/message"
	"github.com/bazarino/bazarino/internal/services"
)

type serviceHarness struct {
	svc      *Service
	listings listingrepo.ListingRepository
	messages messagerepo.MessageRepository
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Listing{}, &domain.Chat{}, &domain.ChatMessage{}))

	listings := listingrepo.NewListingRepository(db)
	messages := messagerepo.NewMessageRepository(db)
	chats := chatrepo.NewChatRepository(db)
	return &serviceHarness{
		svc:      NewService(chats, messages, listings, &services.NoOpLogger{}),
		listings: listings,
		messages: messages,
	}
}

func (h *serviceHarness) seedListing(t *testing.T, sellerID uint, status domain.ListingStatus) *domain.Listing {
	t.Helper()
	l, err := h.listings.Create(context.Background(), &domain.Listing{
		SellerID:    sellerID,
		Title:       "Bicycle, barely used",
		Description: "One owner",
		PriceCents:  150_00,
		Category:    "sports",
		Status:      status,
	})
	require.NoError(t, err)
	return l
}

func TestStartChatCreatesOnce(t *testing.T) {
	h := newServiceHarness(t)
	listing := h.seedListing(t, 20, domain.ListingStatusActive)
	ctx := context.Background()

	chat, created, err := h.svc.StartChat(ctx, 10, listing.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint(10), chat.BuyerID)
	assert.Equal(t, uint(20), chat.SellerID)

	// Second start returns the same conversation.
	again, created, err := h.svc.StartChat(ctx, 10, listing.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.ID, again.ID)
}

func TestStartChatRejections(t *testing.T) {
	h := newServiceHarness(t)
	active := h.seedListing(t, 20, domain.ListingStatusActive)
	sold := h.seedListing(t, 20, domain.ListingStatusSold)
	ctx := context.Background()

	cases := []struct {
		name      string
		buyerID   uint
		listingID uint
	}{
		{"own listing", 20, active.ID},
		{"inactive listing", 10, sold.ID},
		{"unknown listing", 10, 999},
		{"missing buyer", 0, active.ID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := h.svc.StartChat(ctx, tc.buyerID, tc.listingID)
			var chatErr *ChatError
			require.ErrorAs(t, err, &chatErr)
			assert.Equal(t, ErrTypeValidation, chatErr.Type)
		})
	}
}

func TestGetUserChatsWithUnreadCounts(t *testing.T) {
	h := newServiceHarness(t)
	listing := h.seedListing(t, 20, domain.ListingStatusActive)
	ctx := context.Background()

	chat, _, err := h.svc.StartChat(ctx, 10, listing.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := h.messages.Create(ctx, &domain.ChatMessage{ChatID: chat.ID, SenderID: 20, Content: "still for sale"})
		require.NoError(t, err)
	}

	summaries, err := h.svc.GetUserChats(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, chat.ID, summaries[0].Chat.ID)
	assert.Equal(t, int64(3), summaries[0].UnreadCount)

	// The sender has nothing unread.
	summaries, err = h.svc.GetUserChats(ctx, 20)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].UnreadCount)

	// A stranger has no conversations at all.
	summaries, err = h.svc.GetUserChats(ctx, 30)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestGetChatMessagesAuthorization(t *testing.T) {
	h := newServiceHarness(t)
	listing := h.seedListing(t, 20, domain.ListingStatusActive)
	ctx := context.Background()

	chat, _, err := h.svc.StartChat(ctx, 10, listing.ID)
	require.NoError(t, err)

	_, _, err = h.svc.GetChatMessages(ctx, chat.ID, 30, 0, 0)
	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, ErrTypeUnauthorized, chatErr.Type)
}

func TestGetChatMessagesMarksRead(t *testing.T) {
	h := newServiceHarness(t)
	listing := h.seedListing(t, 20, domain.ListingStatusActive)
	ctx := context.Background()

	chat, _, err := h.svc.StartChat(ctx, 10, listing.ID)
	require.NoError(t, err)
	_, err = h.messages.Create(ctx, &domain.ChatMessage{ChatID: chat.ID, SenderID: 20, Content: "yes, still here"})
	require.NoError(t, err)

	messages, total, err := h.svc.GetChatMessages(ctx, chat.ID, 10, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, messages, 1)

	// Fetching the history cleared the unread badge.
	summaries, err := h.svc.GetUserChats(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].UnreadCount)
}
