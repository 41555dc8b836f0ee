package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level at or below which an item counts as low stock.
const LowStockThreshold = 5

// Category groups menu items for browsing and category analytics.
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Slug        string `json:"slug" db:"slug"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	IsActive    bool   `json:"isActive" db:"is_active"`
}

// MenuItem represents a product on the coffee shop menu.
type MenuItem struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	Stock       int             `json:"stock" db:"stock"`
	IsAvailable bool            `json:"isAvailable" db:"is_available"`
	IsFeatured  bool            `json:"isFeatured" db:"is_featured"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// InStock reports whether at least one unit is in stock.
func (m MenuItem) InStock() bool {
	return m.Stock > 0
}

// StockStatus returns a human readable stock level.
func (m MenuItem) StockStatus() string {
	switch {
	case m.Stock == 0:
		return "Out of Stock"
	case m.Stock <= LowStockThreshold:
		return "Low Stock"
	default:
		return "In Stock"
	}
}

// Menu sort orders accepted by MenuFilter.
const (
	SortByName      = "name"
	SortByPriceLow  = "price_low"
	SortByPriceHigh = "price_high"
	SortByRating    = "rating"
	SortByPopular   = "popular"
)

// MenuFilter describes a catalogue search.
type MenuFilter struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Limit    int
	Offset   int
}

// MenuItemView is a menu item priced in the caller's display currency.
type MenuItemView struct {
	MenuItem
	Currency     Currency        `json:"currency"`
	DisplayPrice decimal.Decimal `json:"displayPrice"`
	StockLabel   string          `json:"stockStatus"`
}

// NewMenuItemView converts the item price from the catalogue base currency into currency.
func NewMenuItemView(item MenuItem, currency Currency) MenuItemView {
	return MenuItemView{
		MenuItem:     item,
		Currency:     currency,
		DisplayPrice: Convert(item.Price, BaseCurrency, currency),
		StockLabel:   item.StockStatus(),
	}
}

// UpdateStockRequest is the admin payload for setting stock.
type UpdateStockRequest struct {
	Stock *int `json:"stock"`
}

// UpdatePriceRequest is the admin payload for setting a catalogue price.
type UpdatePriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}
