package handler

import (
	"net/http"
	"strings"

	"coffeeshop/internal/middleware"
	"coffeeshop/internal/model"
	"coffeeshop/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order and coupon HTTP requests.
type OrderHandler struct {
	orders  service.OrderService
	coupons service.CouponService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, coupons service.CouponService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		coupons: coupons,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// ownedOrder loads the order at {id} and hides it from callers who do not own it.
func (h *OrderHandler) ownedOrder(w http.ResponseWriter, r *http.Request) (*model.Order, bool) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return nil, false
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err, h.logger)
		return nil, false
	}

	if order.Owner != middleware.OwnerFromContext(r.Context()) {
		h.logger.Warn().Str("order_id", id.String()).Msg("order requested by a different owner")
		respondError(w, model.ErrOrderNotFound, h.logger)
		return nil, false
	}
	return order, true
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	order, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ApplyCoupon handles POST /api/orders/{id}/coupon.
func (h *OrderHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	order, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}

	var req model.ApplyCouponRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "code is required", h.logger)
		return
	}

	usage, err := h.coupons.Apply(r.Context(), req.Code, order.ID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// QuoteCoupon handles POST /api/coupons/quote.
func (h *OrderHandler) QuoteCoupon(w http.ResponseWriter, r *http.Request) {
	var req model.QuoteCouponRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "code is required", h.logger)
		return
	}

	discount, err := h.coupons.Quote(r.Context(), req.Code, req.Total)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, discount)
}

// List handles GET /api/admin/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", 0, h.logger)
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset", 0, h.logger)
	if !ok {
		return
	}
	status := model.OrderStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))

	orders, err := h.orders.List(r.Context(), status, limit, offset)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PATCH /api/admin/orders/{id}.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "status is required", h.logger)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
