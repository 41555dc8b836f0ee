package handler

import (
	"net/http"

	"coffeeshop/internal/middleware"
	"coffeeshop/internal/model"
	"coffeeshop/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart and checkout HTTP requests for the calling owner.
type CartHandler struct {
	cart     service.CartService
	checkout service.CheckoutService
	logger   zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart service.CartService, checkout service.CheckoutService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:     cart,
		checkout: checkout,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

func (h *CartHandler) respondCart(w http.ResponseWriter, currency model.Currency, cart *model.Cart, err error) {
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.NewCartResponse(cart, currency))
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, ok := displayCurrency(w, r, h.logger)
	if !ok {
		return
	}

	cart, err := h.cart.Get(r.Context(), middleware.OwnerFromContext(r.Context()))
	h.respondCart(w, currency, cart, err)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	currency, ok := displayCurrency(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddToCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.MenuItemID <= 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "menuItemId is required", h.logger)
		return
	}

	cart, err := h.cart.Add(r.Context(), middleware.OwnerFromContext(r.Context()), req.MenuItemID, req.Quantity)
	h.respondCart(w, currency, cart, err)
}

// UpdateItem handles PATCH /api/cart/items/{lineID}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	currency, ok := displayCurrency(w, r, h.logger)
	if !ok {
		return
	}
	lineID, ok := pathInt64(w, r, "lineID", h.logger)
	if !ok {
		return
	}

	var req model.UpdateCartLineRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.cart.UpdateQuantity(r.Context(), middleware.OwnerFromContext(r.Context()), lineID, req.Quantity)
	h.respondCart(w, currency, cart, err)
}

// RemoveItem handles DELETE /api/cart/items/{lineID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	currency, ok := displayCurrency(w, r, h.logger)
	if !ok {
		return
	}
	lineID, ok := pathInt64(w, r, "lineID", h.logger)
	if !ok {
		return
	}

	cart, err := h.cart.Remove(r.Context(), middleware.OwnerFromContext(r.Context()), lineID)
	h.respondCart(w, currency, cart, err)
}

// Checkout handles POST /api/checkout.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	req.Owner = middleware.OwnerFromContext(r.Context())

	order, err := h.checkout.Checkout(r.Context(), &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}
