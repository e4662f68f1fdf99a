// File: internal/domain/chat.go
package domain

import "time"

// Chat represents a conversation between a buyer and a seller about one listing.
// For a given (buyer, seller, listing) triple at most one chat exists; callers
// must look up before creating.
type Chat struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	ListingID     uint      `json:"listing_id" gorm:"not null;index:idx_chat_triple,unique"`
	BuyerID       uint      `json:"buyer_id" gorm:"not null;index:idx_chat_triple,unique"`
	SellerID      uint      `json:"seller_id" gorm:"not null;index:idx_chat_triple,unique"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasParticipant reports whether the given user is one of the two parties.
func (c *Chat) HasParticipant(userID uint) bool {
	return userID != 0 && (userID == c.BuyerID || userID == c.SellerID)
}

// OtherParticipant returns the counterpart of the given participant.
// The caller must have checked HasParticipant first.
func (c *Chat) OtherParticipant(userID uint) uint {
	if userID == c.BuyerID {
		return c.SellerID
	}
	return c.BuyerID
}
