package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coffeeshop/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMenuHandler_Search(t *testing.T) {
	latte := model.MenuItem{ID: 1, Name: "Latte", Price: dec("7.49"), Category: "coffee", Stock: 20, IsAvailable: true}

	t.Run("passes filters and converts prices", func(t *testing.T) {
		svc := new(MockMenuService)
		h := NewMenuHandler(svc, zerolog.Nop())
		svc.On("Search", mock.Anything, mock.MatchedBy(func(f model.MenuFilter) bool {
			return f.Query == "latte" && f.Category == "coffee" && f.Sort == model.SortByPriceLow &&
				f.MinPrice != nil && f.MinPrice.Equal(dec("2")) && f.MaxPrice == nil && f.Limit == 5
		})).Return([]model.MenuItem{latte}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/menu?q=latte&category=coffee&sort=price_low&min_price=2&limit=5&currency=eur", nil)
		w := serve("GET /api/menu", h.Search, req)

		require.Equal(t, http.StatusOK, w.Code)
		var views []model.MenuItemView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
		require.Len(t, views, 1)
		assert.Equal(t, model.CurrencyEUR, views[0].Currency)
		assert.True(t, views[0].DisplayPrice.Equal(dec("8.74")), "got %s", views[0].DisplayPrice)
		assert.True(t, views[0].Price.Equal(dec("7.49")))
		assert.Equal(t, "In Stock", views[0].StockLabel)
		svc.AssertExpectations(t)
	})

	t.Run("invalid currency", func(t *testing.T) {
		svc := new(MockMenuService)
		h := NewMenuHandler(svc, zerolog.Nop())

		w := serve("GET /api/menu", h.Search, httptest.NewRequest(http.MethodGet, "/api/menu?currency=usd", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidCurrency, decodeError(t, w).Error)
		svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("invalid price bound", func(t *testing.T) {
		h := NewMenuHandler(new(MockMenuService), zerolog.Nop())

		w := serve("GET /api/menu", h.Search, httptest.NewRequest(http.MethodGet, "/api/menu?max_price=lots", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		h := NewMenuHandler(new(MockMenuService), zerolog.Nop())

		w := serve("GET /api/menu", h.Search, httptest.NewRequest(http.MethodGet, "/api/menu?limit=ten", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(MockMenuService)
		h := NewMenuHandler(svc, zerolog.Nop())
		svc.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		w := serve("GET /api/menu", h.Search, httptest.NewRequest(http.MethodGet, "/api/menu", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestMenuHandler_GetByID(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		mockItem       *model.MenuItem
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", path: "/api/menu/1", mockItem: &model.MenuItem{ID: 1, Name: "Latte", Price: dec("7.49")}, expectedStatus: http.StatusOK, expectService: true},
		{name: "Not found", path: "/api/menu/99", mockError: model.ErrMenuItemNotFound, expectedStatus: http.StatusNotFound, expectService: true},
		{name: "Invalid ID", path: "/api/menu/abc", expectedStatus: http.StatusBadRequest},
		{name: "Zero ID", path: "/api/menu/0", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockMenuService)
			h := NewMenuHandler(svc, zerolog.Nop())
			if tt.expectService {
				svc.On("GetByID", mock.Anything, mock.AnythingOfType("int64")).Return(tt.mockItem, tt.mockError)
			}

			w := serve("GET /api/menu/{id}", h.GetByID, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestMenuHandler_CategoriesAndFeatured(t *testing.T) {
	svc := new(MockMenuService)
	h := NewMenuHandler(svc, zerolog.Nop())
	svc.On("Categories", mock.Anything).Return([]model.Category{{ID: 1, Slug: "coffee", Name: "Coffee"}}, nil)
	svc.On("Featured", mock.Anything, 3).Return([]model.MenuItem{{ID: 1, Name: "Latte", Price: dec("7.49")}}, nil)

	w := serve("GET /api/menu/categories", h.Categories, httptest.NewRequest(http.MethodGet, "/api/menu/categories", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"coffee"`)

	w = serve("GET /api/menu/featured", h.Featured, httptest.NewRequest(http.MethodGet, "/api/menu/featured?limit=3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"displayPrice":"7.49"`)
	svc.AssertExpectations(t)
}

func TestMenuHandler_UpdateStock(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockMenuService)
		h := NewMenuHandler(svc, zerolog.Nop())
		svc.On("UpdateStock", mock.Anything, int64(1), 0).Return(&model.MenuItem{ID: 1, Stock: 0}, nil)

		w := serve("PATCH /api/admin/menu/{id}/stock", h.UpdateStock, jsonRequest(t, http.MethodPatch, "/api/admin/menu/1/stock", `{"stock":0}`))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Out of Stock")
		svc.AssertExpectations(t)
	})

	t.Run("missing stock", func(t *testing.T) {
		h := NewMenuHandler(new(MockMenuService), zerolog.Nop())

		w := serve("PATCH /api/admin/menu/{id}/stock", h.UpdateStock, jsonRequest(t, http.MethodPatch, "/api/admin/menu/1/stock", `{}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeMissingField, decodeError(t, w).Error)
	})

	t.Run("negative stock", func(t *testing.T) {
		svc := new(MockMenuService)
		h := NewMenuHandler(svc, zerolog.Nop())
		svc.On("UpdateStock", mock.Anything, int64(1), -4).Return(nil, model.ErrInvalidQuantity)

		w := serve("PATCH /api/admin/menu/{id}/stock", h.UpdateStock, jsonRequest(t, http.MethodPatch, "/api/admin/menu/1/stock", `{"stock":-4}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMenuHandler_UpdatePrice(t *testing.T) {
	t.Run("accepts decimal strings", func(t *testing.T) {
		svc := new(MockMenuService)
		h := NewMenuHandler(svc, zerolog.Nop())
		svc.On("UpdatePrice", mock.Anything, int64(1), mock.MatchedBy(func(p decimal.Decimal) bool {
			return p.String() == "8.25"
		})).Return(&model.MenuItem{ID: 1, Price: dec("8.25")}, nil)

		w := serve("PATCH /api/admin/menu/{id}/price", h.UpdatePrice, jsonRequest(t, http.MethodPatch, "/api/admin/menu/1/price", `{"price":"8.25"}`))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := NewMenuHandler(new(MockMenuService), zerolog.Nop())

		w := serve("PATCH /api/admin/menu/{id}/price", h.UpdatePrice, jsonRequest(t, http.MethodPatch, "/api/admin/menu/1/price", `{"price":`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidJSON, decodeError(t, w).Error)
	})
}
