// File: internal/handlers/listing_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bazarino/bazarino/internal/domain"
	"github.com/bazarino/bazarino/internal/middleware"
	"github.com/bazarino/bazarino/internal/services/listing_services"
)

type ListingHandler struct {
	ListingService *listing_services.ListingService
}

func NewListingHandler(service *listing_services.ListingService) *ListingHandler {
	return &ListingHandler{ListingService: service}
}

// CreateListing publishes a new listing for the authenticated seller.
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		PriceCents  int64  `json:"price_cents"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.ListingService.CreateListing(r.Context(), &domain.Listing{
		SellerID:    userID,
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// BrowseListings lists active listings with optional category filter and pagination.
func (h *ListingHandler) BrowseListings(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	category := r.URL.Query().Get("category")

	listings, total, err := h.ListingService.BrowseListings(r.Context(), category, limit, offset)
	if err != nil {
		writeError(w, "Could not retrieve listings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"listings": listings,
		"total":    total,
	})
}

// GetListing returns one listing with its rendered description.
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	detail, err := h.ListingService.GetListing(r.Context(), id)
	if err != nil {
		if errors.Is(err, listing_services.ErrListingNotFound) {
			writeError(w, "Listing not found", http.StatusNotFound)
			return
		}
		writeError(w, "Could not retrieve listing", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// MarkSold flips the caller's listing to sold.
func (h *ListingHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	if err := h.ListingService.MarkSold(r.Context(), id, userID); err != nil {
		if errors.Is(err, listing_services.ErrNotOwner) {
			writeError(w, "Forbidden", http.StatusForbidden)
			return
		}
		writeError(w, "Could not update listing", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteListing removes the caller's listing.
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	if err := h.ListingService.DeleteListing(r.Context(), id, userID); err != nil {
		if errors.Is(err, listing_services.ErrNotOwner) {
			writeError(w, "Forbidden", http.StatusForbidden)
			return
		}
		writeError(w, "Could not delete listing", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseIDVar(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
