package handler

import (
	"net/http"
	"strings"

	"coffeeshop/internal/model"
	"coffeeshop/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MenuHandler handles catalogue HTTP requests.
type MenuHandler struct {
	service service.MenuService
	logger  zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(service service.MenuService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger.With().Str("handler", "menu").Logger(),
	}
}

func views(items []model.MenuItem, currency model.Currency) []model.MenuItemView {
	out := make([]model.MenuItemView, len(items))
	for i, item := range items {
		out[i] = model.NewMenuItemView(item, currency)
	}
	return out
}

// Search handles GET /api/menu.
// Query parameters: q, category, min_price, max_price, sort, limit, offset, currency.
func (h *MenuHandler) Search(w http.ResponseWriter, r *http.Request) {
	currency, ok := displayCurrency(w, r, h.logger)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := model.MenuFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
		Sort:     q.Get("sort"),
	}

	for name, dst := range map[string]**decimal.Decimal{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidPrice, "invalid "+name+" parameter", h.logger)
			return
		}
		*dst = &d
	}

	if filter.Limit, ok = queryInt(w, r, "limit", 0, h.logger); !ok {
		return
	}
	if filter.Offset, ok = queryInt(w, r, "offset", 0, h.logger); !ok {
		return
	}

	items, err := h.service.Search(r.Context(), filter)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, views(items, currency))
}

// Categories handles GET /api/menu/categories.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Featured handles GET /api/menu/featured.
func (h *MenuHandler) Featured(w http.ResponseWriter, r *http.Request) {
	currency, ok := displayCurrency(w, r, h.logger)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0, h.logger)
	if !ok {
		return
	}

	items, err := h.service.Featured(r.Context(), limit)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, views(items, currency))
}

// GetByID handles GET /api/menu/{id}.
func (h *MenuHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", h.logger)
	if !ok {
		return
	}
	currency, ok := displayCurrency(w, r, h.logger)
	if !ok {
		return
	}

	item, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.NewMenuItemView(*item, currency))
}

// UpdateStock handles PATCH /api/admin/menu/{id}/stock.
func (h *MenuHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateStockRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Stock == nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "stock is required", h.logger)
		return
	}

	item, err := h.service.UpdateStock(r.Context(), id, *req.Stock)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.NewMenuItemView(*item, model.BaseCurrency))
}

// UpdatePrice handles PATCH /api/admin/menu/{id}/price.
func (h *MenuHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdatePriceRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "price is required", h.logger)
		return
	}

	item, err := h.service.UpdatePrice(r.Context(), id, *req.Price)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.NewMenuItemView(*item, model.BaseCurrency))
}
