package handler

import (
	"net/http"

	"coffeeshop/internal/middleware"
	"coffeeshop/internal/model"
	"coffeeshop/internal/service"

	"github.com/rs/zerolog"
)

// ReviewHandler handles review and wishlist HTTP requests. Both require an
// authenticated user.
type ReviewHandler struct {
	reviews  service.ReviewService
	wishlist service.WishlistService
	logger   zerolog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviews service.ReviewService, wishlist service.WishlistService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		wishlist: wishlist,
		logger:   logger.With().Str("handler", "review").Logger(),
	}
}

func userID(r *http.Request) string {
	return middleware.OwnerFromContext(r.Context()).UserID
}

// List handles GET /api/menu/{id}/reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", h.logger)
	if !ok {
		return
	}

	summary, err := h.reviews.List(r.Context(), id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Add handles POST /api/menu/{id}/reviews.
func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.AddReviewRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	review, err := h.reviews.Add(r.Context(), userID(r), id, req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// ToggleHelpful handles POST /api/reviews/{id}/helpful.
func (h *ReviewHandler) ToggleHelpful(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", h.logger)
	if !ok {
		return
	}

	resp, err := h.reviews.ToggleHelpful(r.Context(), userID(r), id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Wishlist handles GET /api/wishlist.
func (h *ReviewHandler) Wishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.wishlist.List(r.Context(), userID(r))
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	if items == nil {
		items = []model.WishlistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// WishlistStatus handles GET /api/wishlist/{itemID}.
func (h *ReviewHandler) WishlistStatus(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathInt64(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	in, err := h.wishlist.Contains(r.Context(), userID(r), itemID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.WishlistStatus{InWishlist: in})
}

// ToggleWishlist handles POST /api/wishlist/{itemID}.
func (h *ReviewHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathInt64(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	in, err := h.wishlist.Toggle(r.Context(), userID(r), itemID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.WishlistStatus{InWishlist: in})
}
