package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity is the most units of one item a cart line may hold.
const MaxLineQuantity = 999

// Owner identifies who a cart or order belongs to: an authenticated user or an
// anonymous session. Exactly one of the two is set.
type Owner struct {
	UserID     string `json:"userId,omitempty"`
	SessionKey string `json:"sessionKey,omitempty"`
}

// Validate checks that exactly one owner identity is set.
func (o Owner) Validate() error {
	if (o.UserID == "") == (o.SessionKey == "") {
		return ErrInvalidOwner
	}
	return nil
}

// IsUser reports whether the owner is an authenticated user.
func (o Owner) IsUser() bool {
	return o.UserID != ""
}

// String returns a log-friendly owner identifier.
func (o Owner) String() string {
	if o.IsUser() {
		return "user:" + o.UserID
	}
	return "session:" + o.SessionKey
}

// Cart is a mutable collection of menu items owned by a user or session.
type Cart struct {
	ID        int64      `json:"id" db:"id"`
	Owner     Owner      `json:"owner"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartLine is a menu item and quantity inside a cart. UnitPrice is the live
// catalogue price at the time the line was read.
type CartLine struct {
	ID         int64           `json:"id" db:"id"`
	CartID     int64           `json:"-" db:"cart_id"`
	MenuItemID int64           `json:"menuItemId" db:"menu_item_id"`
	Name       string          `json:"name" db:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"price"`
	Quantity   int             `json:"quantity" db:"quantity"`
}

// Total returns quantity × live unit price.
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TotalItems sums quantities across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice sums line totals using the prices the lines were loaded with.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// AddToCartRequest is the payload for adding an item to the cart.
type AddToCartRequest struct {
	MenuItemID int64 `json:"menuItemId"`
	Quantity   int   `json:"quantity"`
}

// UpdateCartLineRequest is the payload for changing a line quantity.
type UpdateCartLineRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is a cart rendered in the caller's display currency.
type CartResponse struct {
	ID           int64           `json:"id"`
	Lines        []CartLine      `json:"lines"`
	TotalItems   int             `json:"totalItems"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Currency     Currency        `json:"currency"`
	DisplayTotal decimal.Decimal `json:"displayTotal"`
}

// NewCartResponse snapshots totals of c for presentation.
func NewCartResponse(c *Cart, currency Currency) CartResponse {
	lines := c.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	total := c.TotalPrice()
	return CartResponse{
		ID:           c.ID,
		Lines:        lines,
		TotalItems:   c.TotalItems(),
		TotalPrice:   total,
		Currency:     currency,
		DisplayTotal: Convert(total, BaseCurrency, currency),
	}
}
