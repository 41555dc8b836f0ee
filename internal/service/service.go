package service

import (
	"context"

	"coffeeshop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuService defines catalogue browsing and admin inventory operations.
type MenuService interface {
	// Search lists available menu items matching the filter.
	Search(ctx context.Context, filter model.MenuFilter) ([]model.MenuItem, error)

	// GetByID retrieves a single menu item.
	GetByID(ctx context.Context, id int64) (*model.MenuItem, error)

	// Categories lists active categories.
	Categories(ctx context.Context) ([]model.Category, error)

	// Featured lists available featured items.
	Featured(ctx context.Context, limit int) ([]model.MenuItem, error)

	// UpdateStock sets the stock level of an item.
	UpdateStock(ctx context.Context, id int64, stock int) (*model.MenuItem, error)

	// UpdatePrice sets the catalogue price of an item.
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*model.MenuItem, error)
}

// CartService defines operations on the owner's cart.
type CartService interface {
	// Get returns the owner's cart with live-priced lines, creating it if needed.
	Get(ctx context.Context, owner model.Owner) (*model.Cart, error)

	// Add adds quantity units of a menu item to the cart.
	Add(ctx context.Context, owner model.Owner, menuItemID int64, quantity int) (*model.Cart, error)

	// UpdateQuantity sets a line quantity; zero or less removes the line.
	UpdateQuantity(ctx context.Context, owner model.Owner, lineID int64, quantity int) (*model.Cart, error)

	// Remove deletes a line from the cart.
	Remove(ctx context.Context, owner model.Owner, lineID int64) (*model.Cart, error)
}

// CheckoutService turns a cart into an order.
type CheckoutService interface {
	// Checkout materialises the owner's cart into a pending order and empties the cart.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// GetByID retrieves an order by its ID with its lines.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List returns orders newest first, optionally filtered by status.
	List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)

	// UpdateStatus moves an order along its fulfilment pipeline.
	UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateOrderStatusRequest) (*model.Order, error)
}

// CouponService prices and redeems coupons.
type CouponService interface {
	// Quote computes the discount a code gives on a total without redeeming it.
	Quote(ctx context.Context, code string, total decimal.Decimal) (*model.Discount, error)

	// Apply redeems a code against an order. Applying the same code to the same
	// order again returns the original usage.
	Apply(ctx context.Context, code string, orderID uuid.UUID) (*model.CouponUsage, error)
}

// AnalyticsService exposes read-only reporting over historical orders.
type AnalyticsService interface {
	// Dashboard returns the admin summary.
	Dashboard(ctx context.Context) (*model.DashboardStats, error)

	// SalesSeries returns one entry per day for the last days days, oldest first.
	SalesSeries(ctx context.Context, days int) ([]model.DailySales, error)

	// CategoryStats returns sales per category, highest revenue first.
	CategoryStats(ctx context.Context) ([]model.CategoryStat, error)
}

// ReviewService manages menu item reviews.
type ReviewService interface {
	Add(ctx context.Context, userID string, menuItemID int64, req model.AddReviewRequest) (*model.Review, error)
	List(ctx context.Context, menuItemID int64) (*model.ReviewSummary, error)
	ToggleHelpful(ctx context.Context, userID string, reviewID int64) (*model.HelpfulResponse, error)
}

// WishlistService manages saved menu items.
type WishlistService interface {
	Toggle(ctx context.Context, userID string, menuItemID int64) (bool, error)
	Contains(ctx context.Context, userID string, menuItemID int64) (bool, error)
	List(ctx context.Context, userID string) ([]model.WishlistItem, error)
}

// normalizePage clamps limit to [1, 100] with a default of def, and offset to ≥0.
func normalizePage(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
