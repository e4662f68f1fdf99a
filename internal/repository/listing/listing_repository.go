package listing

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/bazarino/bazarino/internal/domain"
)

var ErrListingNotFound = errors.New("listing not found")
var ErrUnauthorizedAccess = errors.New("unauthorized access to listing")

type gormListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &gormListingRepository{db: db}
}

// Create - Enhanced with input validation and secure logging
func (r *gormListingRepository) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	if err := r.validateListingInput(listing); err != nil {
		log.Printf("[ListingRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if listing.Status == "" {
		listing.Status = domain.ListingStatusActive
	}

	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		log.Printf("[ListingRepository] Database error during listing creation for seller ID %d: %v", listing.SellerID, err)
		return nil, errors.New("database error creating listing")
	}

	log.Printf("[ListingRepository] Listing created successfully with ID: %d for seller: %d", listing.ID, listing.SellerID)
	return listing, nil
}

// FindByID - Enhanced with secure error handling
func (r *gormListingRepository) FindByID(ctx context.Context, id uint) (*domain.Listing, error) {
	if id == 0 {
		return nil, errors.New("invalid listing ID")
	}

	var listing domain.Listing
	err := r.db.WithContext(ctx).First(&listing, id).Error
	if err == nil {
		return &listing, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}

	log.Printf("[ListingRepository] FindByID database error: %v", err)
	return nil, errors.New("database query failed")
}

// FindActive - paginated browse of active listings, newest first, with an
// optional category filter.
func (r *gormListingRepository) FindActive(ctx context.Context, category string, limit, offset int) ([]domain.Listing, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("status = ?", domain.ListingStatusActive)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("[ListingRepository] Database error counting active listings: %v", err)
		return nil, 0, errors.New("database error counting listings")
	}

	var listings []domain.Listing
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error

	if err != nil {
		log.Printf("[ListingRepository] Database error in paginated listing query: %v", err)
		return nil, 0, errors.New("database error retrieving listings")
	}

	return listings, total, nil
}

// FindBySellerID returns every listing owned by the seller, including sold
// and removed ones.
func (r *gormListingRepository) FindBySellerID(ctx context.Context, sellerID uint) ([]domain.Listing, error) {
	if sellerID == 0 {
		return nil, errors.New("invalid seller ID")
	}

	var listings []domain.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&listings).Error

	if err != nil {
		log.Printf("[ListingRepository] Database error finding listings for seller ID %d: %v", sellerID, err)
		return nil, errors.New("database error fetching listings")
	}

	return listings, nil
}

// UpdateStatus - ownership is enforced in the WHERE clause so a seller can
// only change their own listings.
func (r *gormListingRepository) UpdateStatus(ctx context.Context, listingID, sellerID uint, status domain.ListingStatus) error {
	if listingID == 0 || sellerID == 0 {
		return errors.New("invalid listing ID or seller ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND seller_id = ?", listingID, sellerID).
		Update("status", status)

	if result.Error != nil {
		log.Printf("[ListingRepository] Database error updating status for listing ID %d: %v", listingID, result.Error)
		return errors.New("database error updating listing status")
	}

	if result.RowsAffected == 0 {
		return ErrUnauthorizedAccess
	}

	log.Printf("[ListingRepository] Listing %d status changed to %s by seller %d", listingID, status, sellerID)
	return nil
}

// Delete - Enhanced with validation and secure logging
func (r *gormListingRepository) Delete(ctx context.Context, listingID, sellerID uint) error {
	if listingID == 0 || sellerID == 0 {
		return errors.New("invalid listing ID or seller ID")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND seller_id = ?", listingID, sellerID).
		Delete(&domain.Listing{})

	if result.Error != nil {
		log.Printf("[ListingRepository] Database error deleting listing ID %d for seller ID %d: %v", listingID, sellerID, result.Error)
		return errors.New("database error deleting listing")
	}

	if result.RowsAffected == 0 {
		return ErrUnauthorizedAccess
	}

	log.Printf("[ListingRepository] Listing deleted successfully: ID %d for seller %d", listingID, sellerID)
	return nil
}

// ===== SECURITY VALIDATION HELPERS =====

func (r *gormListingRepository) validateListingInput(listing *domain.Listing) error {
	if listing == nil {
		return errors.New("listing cannot be nil")
	}
	if err := listing.IsValid(); err != nil {
		return err
	}
	if len(listing.Title) > 200 {
		return errors.New("title must be 200 characters or less")
	}
	if len(listing.Description) > 20000 {
		return errors.New("description must be 20000 characters or less")
	}
	return nil
}
