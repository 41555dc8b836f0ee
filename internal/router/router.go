package router

import (
	"net/http"

	"coffeeshop/internal/handler"
	"coffeeshop/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Menu      *handler.MenuHandler
	Cart      *handler.CartHandler
	Orders    *handler.OrderHandler
	Reviews   *handler.ReviewHandler
	Analytics *handler.AnalyticsHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue
	mux.HandleFunc("GET /api/menu", h.Menu.Search)
	mux.HandleFunc("GET /api/menu/categories", h.Menu.Categories)
	mux.HandleFunc("GET /api/menu/featured", h.Menu.Featured)
	mux.HandleFunc("GET /api/menu/{id}", h.Menu.GetByID)
	mux.HandleFunc("GET /api/menu/{id}/reviews", h.Reviews.List)
	mux.HandleFunc("POST /api/menu/{id}/reviews", h.Reviews.Add)
	mux.HandleFunc("POST /api/reviews/{id}/helpful", h.Reviews.ToggleHelpful)

	// Cart and checkout
	mux.HandleFunc("GET /api/cart", h.Cart.Get)
	mux.HandleFunc("POST /api/cart/items", h.Cart.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{lineID}", h.Cart.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{lineID}", h.Cart.RemoveItem)
	mux.HandleFunc("POST /api/checkout", h.Cart.Checkout)

	// Orders and coupons
	mux.HandleFunc("GET /api/orders/{id}", h.Orders.GetByID)
	mux.HandleFunc("POST /api/orders/{id}/coupon", h.Orders.ApplyCoupon)
	mux.HandleFunc("POST /api/coupons/quote", h.Orders.QuoteCoupon)

	// Wishlist
	mux.HandleFunc("GET /api/wishlist", h.Reviews.Wishlist)
	mux.HandleFunc("GET /api/wishlist/{itemID}", h.Reviews.WishlistStatus)
	mux.HandleFunc("POST /api/wishlist/{itemID}", h.Reviews.ToggleWishlist)

	// Admin
	mux.HandleFunc("GET /api/admin/dashboard", h.Analytics.Dashboard)
	mux.HandleFunc("GET /api/admin/sales", h.Analytics.Sales)
	mux.HandleFunc("GET /api/admin/categories/stats", h.Analytics.CategoryStats)
	mux.HandleFunc("GET /api/admin/orders", h.Orders.List)
	mux.HandleFunc("PATCH /api/admin/orders/{id}", h.Orders.UpdateStatus)
	mux.HandleFunc("PATCH /api/admin/menu/{id}/stock", h.Menu.UpdateStock)
	mux.HandleFunc("PATCH /api/admin/menu/{id}/price", h.Menu.UpdatePrice)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth -> Owner
	var handler http.Handler = mux
	handler = middleware.Owner(handler)
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
