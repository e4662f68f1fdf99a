package listing_services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/bazarino/bazarino/internal/domain"
	listingrepo "github.com/bazarino/bazarino/internal/repository/listing"
)

var ErrListingNotFound = listingrepo.ErrListingNotFound
var ErrNotOwner = errors.New("listing does not belong to this seller")

// Logger interface for the listing service
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ListingDetail is a listing plus its description rendered from markdown.
type ListingDetail struct {
	Listing         domain.Listing `json:"listing"`
	DescriptionHTML string         `json:"description_html"`
}

type ListingService struct {
	listingRepo listingrepo.ListingRepository
	markdown    goldmark.Markdown
	logger      Logger
}

func NewListingService(listingRepo listingrepo.ListingRepository, logger Logger) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		markdown:    goldmark.New(),
		logger:      logger,
	}
}

// CreateListing publishes a new item for the seller.
func (s *ListingService) CreateListing(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	if err := l.IsValid(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	created, err := s.listingRepo.Create(ctx, l)
	if err != nil {
		s.logger.Error("listing creation failed", "seller_id", l.SellerID, "error", err)
		return nil, err
	}

	s.logger.Info("listing created", "listing_id", created.ID, "seller_id", created.SellerID)
	return created, nil
}

// GetListing fetches one listing and renders its markdown description.
func (s *ListingService) GetListing(ctx context.Context, id uint) (*ListingDetail, error) {
	l, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(l.Description), &buf); err != nil {
		// Fall back to the raw source rather than failing the whole page.
		s.logger.Warn("description rendering failed", "listing_id", id, "error", err)
		buf.Reset()
		buf.WriteString(l.Description)
	}

	return &ListingDetail{Listing: *l, DescriptionHTML: buf.String()}, nil
}

// BrowseListings pages through active listings, optionally by category.
func (s *ListingService) BrowseListings(ctx context.Context, category string, limit, offset int) ([]domain.Listing, int64, error) {
	return s.listingRepo.FindActive(ctx, category, limit, offset)
}

// GetSellerListings returns everything the seller has published.
func (s *ListingService) GetSellerListings(ctx context.Context, sellerID uint) ([]domain.Listing, error) {
	return s.listingRepo.FindBySellerID(ctx, sellerID)
}

// MarkSold flips the seller's own listing to sold.
func (s *ListingService) MarkSold(ctx context.Context, listingID, sellerID uint) error {
	err := s.listingRepo.UpdateStatus(ctx, listingID, sellerID, domain.ListingStatusSold)
	if errors.Is(err, listingrepo.ErrUnauthorizedAccess) {
		return ErrNotOwner
	}
	return err
}

// DeleteListing removes the seller's own listing.
func (s *ListingService) DeleteListing(ctx context.Context, listingID, sellerID uint) error {
	err := s.listingRepo.Delete(ctx, listingID, sellerID)
	if errors.Is(err, listingrepo.ErrUnauthorizedAccess) {
		return ErrNotOwner
	}
	return err
}
