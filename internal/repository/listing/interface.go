package listing

import (
	"context"

	"github.com/bazarino/bazarino/internal/domain"
)

// ListingRepository handles listing data operations.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	FindByID(ctx context.Context, id uint) (*domain.Listing, error)
	FindActive(ctx context.Context, category string, limit, offset int) ([]domain.Listing, int64, error)
	FindBySellerID(ctx context.Context, sellerID uint) ([]domain.Listing, error)
	UpdateStatus(ctx context.Context, listingID, sellerID uint, status domain.ListingStatus) error
	Delete(ctx context.Context, listingID, sellerID uint) error
}
