// File: internal/domain/listing.go
package domain

import (
	"errors"
	"time"
)

type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusSold    ListingStatus = "sold"
	ListingStatusRemoved ListingStatus = "removed"
)

// Listing represents a single item offered for sale by a user.
type Listing struct {
	ID          uint          `json:"id" gorm:"primarykey"`
	SellerID    uint          `json:"seller_id" gorm:"not null;index"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description"` // markdown source
	PriceCents  int64         `json:"price_cents"`
	Category    string        `json:"category" gorm:"index"`
	Status      ListingStatus `json:"status" gorm:"default:active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (l *Listing) IsValid() error {
	if l.SellerID == 0 {
		return errors.New("seller is required")
	}
	if len(l.Title) < 3 {
		return errors.New("title must be at least 3 characters")
	}
	if l.PriceCents < 0 {
		return errors.New("price cannot be negative")
	}
	return nil
}
