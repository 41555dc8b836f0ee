package handler

import (
	"net/http"

	"coffeeshop/internal/model"
	"coffeeshop/internal/service"

	"github.com/rs/zerolog"
)

// AnalyticsHandler serves the admin reporting endpoints.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("handler", "analytics").Logger(),
	}
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Sales handles GET /api/admin/sales?days=N.
func (h *AnalyticsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", 0, h.logger)
	if !ok {
		return
	}

	series, err := h.service.SalesSeries(r.Context(), days)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	categories, err := h.service.CategoryStats(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	if categories == nil {
		categories = []model.CategoryStat{}
	}

	writeJSON(w, http.StatusOK, model.SalesReport{SalesData: series, CategoryStats: categories})
}

// CategoryStats handles GET /api/admin/categories/stats.
func (h *AnalyticsHandler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.CategoryStats(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	if stats == nil {
		stats = []model.CategoryStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}
