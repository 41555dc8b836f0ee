package repository

import (
	"context"
	"time"

	"coffeeshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MenuRepository defines the interface for catalogue data access operations.
type MenuRepository interface {
	// Search returns available menu items matching the filter.
	Search(ctx context.Context, filter model.MenuFilter) ([]model.MenuItem, error)

	// GetByID retrieves a single menu item. Returns nil if it does not exist.
	GetByID(ctx context.Context, id int64) (*model.MenuItem, error)

	// Featured returns available featured items.
	Featured(ctx context.Context, limit int) ([]model.MenuItem, error)

	// Categories returns all active categories.
	Categories(ctx context.Context) ([]model.Category, error)

	// UpdateStock sets the stock level. Returns nil if the item does not exist.
	UpdateStock(ctx context.Context, id int64, stock int) (*model.MenuItem, error)

	// UpdatePrice sets the catalogue price. Returns nil if the item does not exist.
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*model.MenuItem, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetOrCreate returns the owner's cart, creating it on first use. Lines are not loaded.
	GetOrCreate(ctx context.Context, owner model.Owner) (*model.Cart, error)

	// Lines returns the cart lines priced at the current catalogue price.
	Lines(ctx context.Context, cartID int64) ([]model.CartLine, error)

	// AddLine increments the quantity of an existing line or creates it.
	AddLine(ctx context.Context, cartID, menuItemID int64, quantity int) (*model.CartLine, error)

	// UpdateLineQuantity sets the quantity of a line in the cart.
	// Returns model.ErrLineNotFound if the line is not in the cart.
	UpdateLineQuantity(ctx context.Context, cartID, lineID int64, quantity int) error

	// DeleteLine removes a line from the cart.
	// Returns model.ErrLineNotFound if the line is not in the cart.
	DeleteLine(ctx context.Context, cartID, lineID int64) error

	// LockCart locks the owner's cart row within tx. Returns nil if the owner has no cart.
	LockCart(ctx context.Context, tx pgx.Tx, owner model.Owner) (*model.Cart, error)

	// LockLines locks and returns the cart lines priced at the current catalogue price.
	LockLines(ctx context.Context, tx pgx.Tx, cartID int64) ([]model.CartLine, error)

	// ClearLines deletes every line of the cart within tx.
	ClearLines(ctx context.Context, tx pgx.Tx, cartID int64) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts the order lines within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetByID retrieves an order by its ID along with its lines. Returns nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate locks an order row within tx. Lines are not loaded. Returns nil if not found.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// List returns orders newest first, optionally filtered by status.
	List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)

	// UpdateStatus changes the status and, when notes is not nil, the notes of an order.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, notes *string) error
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetByCode retrieves a coupon by code. Returns nil if not found.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// GetByCodeForUpdate locks a coupon row within tx. Returns nil if not found.
	GetByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error)

	// GetUsageByOrder returns the usage recorded for an order. Returns nil if none.
	GetUsageByOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.CouponUsage, error)

	// IncrementUsage adds one to the coupon's used count.
	IncrementUsage(ctx context.Context, tx pgx.Tx, couponID int64) error

	// CreateUsage records a coupon usage. Returns model.ErrConcurrentModification if
	// the order already has a usage.
	CreateUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error

	// Upsert creates or updates a coupon definition by code, leaving used_count untouched.
	Upsert(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) error
}

// AnalyticsRepository exposes read-only aggregates over historical orders.
type AnalyticsRepository interface {
	// CountOrders returns the total number of orders.
	CountOrders(ctx context.Context) (int, error)

	// CountOrdersByStatus returns the number of orders in a status.
	CountOrdersByStatus(ctx context.Context, status model.OrderStatus) (int, error)

	// CountCustomers returns the number of distinct signed-in, non-staff
	// users that have placed at least one order. Guest sessions are not counted.
	CountCustomers(ctx context.Context) (int, error)

	// CountLowStock returns the number of menu items with stock at or below threshold.
	CountLowStock(ctx context.Context, threshold int) (int, error)

	// OrderTotals returns orders created in [from, to) with one of the statuses.
	OrderTotals(ctx context.Context, from, to time.Time, statuses []model.OrderStatus) ([]model.OrderTotal, error)

	// ItemQuantities returns summed quantities per menu item in order of first sale.
	ItemQuantities(ctx context.Context) ([]model.ItemQuantity, error)

	// CategoryStats returns quantity and revenue per category, highest revenue first.
	CategoryStats(ctx context.Context) ([]model.CategoryStat, error)
}

// ReviewRepository defines the interface for review data access operations.
type ReviewRepository interface {
	// Create inserts a review. Returns model.ErrReviewExists if the user already
	// reviewed the item.
	Create(ctx context.Context, review *model.Review) error

	// ListByMenuItem returns an item's reviews newest first.
	ListByMenuItem(ctx context.Context, menuItemID int64) ([]model.Review, error)

	// HasPurchased reports whether the user has a non-cancelled order containing the item.
	HasPurchased(ctx context.Context, userID string, menuItemID int64) (bool, error)

	// ToggleHelpful adds the user's helpful vote or removes it if present.
	// Returns model.ErrReviewNotFound if the review does not exist.
	ToggleHelpful(ctx context.Context, reviewID int64, userID string) (*model.HelpfulResponse, error)
}

// WishlistRepository defines the interface for wishlist data access operations.
type WishlistRepository interface {
	// Toggle adds the item to the user's wishlist or removes it if present.
	// Returns whether the item is in the wishlist afterwards.
	Toggle(ctx context.Context, userID string, menuItemID int64) (bool, error)

	// Contains reports whether the item is in the user's wishlist.
	Contains(ctx context.Context, userID string, menuItemID int64) (bool, error)

	// List returns the user's wishlist, most recently added first.
	List(ctx context.Context, userID string) ([]model.WishlistItem, error)
}

// CatalogueRepository writes seed data.
type CatalogueRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// UpsertCategory creates or updates a category by slug.
	UpsertCategory(ctx context.Context, tx pgx.Tx, category *model.Category) error

	// UpsertMenuItem creates or updates a menu item by name.
	UpsertMenuItem(ctx context.Context, tx pgx.Tx, item *model.MenuItem) error
}
