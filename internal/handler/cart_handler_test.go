package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"coffeeshop/internal/middleware"
	"coffeeshop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var session = model.Owner{SessionKey: "sess-1"}

func cartWithLines() *model.Cart {
	return &model.Cart{
		ID:    10,
		Owner: session,
		Lines: []model.CartLine{
			{ID: 1, MenuItemID: 1, Name: "Latte", UnitPrice: dec("7.49"), Quantity: 2},
			{ID: 2, MenuItemID: 2, Name: "Mocha", UnitPrice: dec("8.49"), Quantity: 1},
		},
	}
}

func withSession(req *http.Request) *http.Request {
	req.Header.Set(middleware.HeaderSessionID, session.SessionKey)
	return req
}

func TestCartHandler_Get(t *testing.T) {
	t.Run("renders totals in the display currency", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())
		svc.On("Get", mock.Anything, session).Return(cartWithLines(), nil)

		w := serve("GET /api/cart", h.Get, withSession(httptest.NewRequest(http.MethodGet, "/api/cart?currency=EUR", nil)))

		require.Equal(t, http.StatusOK, w.Code)
		var resp model.CartResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.TotalItems)
		assert.True(t, resp.TotalPrice.Equal(dec("23.47")))
		assert.Equal(t, model.CurrencyEUR, resp.Currency)
		assert.True(t, resp.DisplayTotal.Equal(dec("27.38")), "got %s", resp.DisplayTotal)
		svc.AssertExpectations(t)
	})

	t.Run("no identity headers", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())
		svc.On("Get", mock.Anything, model.Owner{}).Return(nil, model.ErrInvalidOwner)

		w := serve("GET /api/cart", h.Get, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidOwner, decodeError(t, w).Error)
	})

	t.Run("empty cart renders an empty line list", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())
		svc.On("Get", mock.Anything, session).Return(&model.Cart{ID: 10}, nil)

		w := serve("GET /api/cart", h.Get, withSession(httptest.NewRequest(http.MethodGet, "/api/cart", nil)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"lines":[]`)
	})
}

func TestCartHandler_AddItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", body: `{"menuItemId":1,"quantity":2}`, expectedStatus: http.StatusOK, expectService: true},
		{name: "Unavailable item", body: `{"menuItemId":4,"quantity":1}`, mockError: model.ErrItemUnavailable, expectedStatus: http.StatusBadRequest, expectService: true},
		{name: "Invalid quantity", body: `{"menuItemId":1,"quantity":0}`, mockError: model.ErrInvalidQuantity, expectedStatus: http.StatusBadRequest, expectService: true},
		{name: "Missing menu item", body: `{"quantity":1}`, expectedStatus: http.StatusBadRequest},
		{name: "Unknown field", body: `{"menuItemId":1,"qty":1}`, expectedStatus: http.StatusBadRequest},
		{name: "Empty body", body: ``, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())
			if tt.expectService {
				var cart *model.Cart
				if tt.mockError == nil {
					cart = cartWithLines()
				}
				svc.On("Add", mock.Anything, session, mock.AnythingOfType("int64"), mock.AnythingOfType("int")).Return(cart, tt.mockError)
			}

			w := serve("POST /api/cart/items", h.AddItem, withSession(jsonRequest(t, http.MethodPost, "/api/cart/items", tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.expectService {
				svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCartHandler_MalformedQuantity(t *testing.T) {
	for _, body := range []string{
		`{"menuItemId":1,"quantity":1.5}`,
		`{"menuItemId":1,"quantity":"two"}`,
		`{"menuItemId":1,"quantity":1e40}`,
	} {
		t.Run(body, func(t *testing.T) {
			svc := new(MockCartService)
			h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())

			w := serve("POST /api/cart/items", h.AddItem, withSession(jsonRequest(t, http.MethodPost, "/api/cart/items", body)))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, model.ErrCodeInvalidQuantity, decodeError(t, w).Error)
			svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("update", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())

		w := serve("PATCH /api/cart/items/{lineID}", h.UpdateItem, withSession(jsonRequest(t, http.MethodPatch, "/api/cart/items/2", `{"quantity":2.5}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidQuantity, decodeError(t, w).Error)
	})

	t.Run("too large", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())
		svc.On("Add", mock.Anything, session, int64(1), 5000).Return(nil, model.ErrQuantityTooLarge)

		w := serve("POST /api/cart/items", h.AddItem, withSession(jsonRequest(t, http.MethodPost, "/api/cart/items", `{"menuItemId":1,"quantity":5000}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidQuantity, decodeError(t, w).Error)
	})
}

func TestCartHandler_UpdateAndRemove(t *testing.T) {
	t.Run("update quantity", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())
		svc.On("UpdateQuantity", mock.Anything, session, int64(2), 4).Return(cartWithLines(), nil)

		w := serve("PATCH /api/cart/items/{lineID}", h.UpdateItem, withSession(jsonRequest(t, http.MethodPatch, "/api/cart/items/2", `{"quantity":4}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("remove unknown line", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())
		svc.On("Remove", mock.Anything, session, int64(7)).Return(nil, model.ErrLineNotFound)

		w := serve("DELETE /api/cart/items/{lineID}", h.RemoveItem, withSession(httptest.NewRequest(http.MethodDelete, "/api/cart/items/7", nil)))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeLineNotFound, decodeError(t, w).Error)
	})

	t.Run("invalid currency does not mutate the cart", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, new(MockCheckoutService), zerolog.Nop())

		w := serve("DELETE /api/cart/items/{lineID}", h.RemoveItem, withSession(httptest.NewRequest(http.MethodDelete, "/api/cart/items/7?currency=JPY", nil)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCartHandler_Checkout(t *testing.T) {
	t.Run("creates an order for the caller", func(t *testing.T) {
		checkout := new(MockCheckoutService)
		h := NewCartHandler(new(MockCartService), checkout, zerolog.Nop())
		order := &model.Order{ID: uuid.New(), Owner: session, Status: model.StatusPending, Currency: model.CurrencyGBP, TotalAmount: dec("23.47")}
		checkout.On("Checkout", mock.Anything, mock.MatchedBy(func(req *model.CheckoutRequest) bool {
			return req.Owner == session && req.Customer.Email == "ada@example.com" && req.Currency == "GBP"
		})).Return(order, nil)

		body := `{"customer":{"name":"Ada","email":"ada@example.com"},"currency":"GBP","notes":"no sugar"}`
		w := serve("POST /api/checkout", h.Checkout, withSession(jsonRequest(t, http.MethodPost, "/api/checkout", body)))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"totalAmount":"23.47"`)
		assert.Contains(t, w.Body.String(), `"status":"pending"`)
		checkout.AssertExpectations(t)
	})

	t.Run("empty cart", func(t *testing.T) {
		checkout := new(MockCheckoutService)
		h := NewCartHandler(new(MockCartService), checkout, zerolog.Nop())
		checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, model.ErrEmptyCart)

		w := serve("POST /api/checkout", h.Checkout, withSession(jsonRequest(t, http.MethodPost, "/api/checkout", `{}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeEmptyCart, decodeError(t, w).Error)
	})

	t.Run("lost race", func(t *testing.T) {
		checkout := new(MockCheckoutService)
		h := NewCartHandler(new(MockCartService), checkout, zerolog.Nop())
		checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, model.ErrConcurrentModification)

		w := serve("POST /api/checkout", h.Checkout, withSession(jsonRequest(t, http.MethodPost, "/api/checkout", `{}`)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
