package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PopularItem is the best selling menu item by quantity.
type PopularItem struct {
	MenuItemID int64  `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalOrders     int             `json:"totalOrders"`
	TotalCustomers  int             `json:"totalCustomers"`
	TodayRevenue    decimal.Decimal `json:"todayRevenue"`
	MostPopularItem *PopularItem    `json:"mostPopularItem"`
	LowStockCount   int             `json:"lowStockCount"`
	PendingOrders   int             `json:"pendingOrders"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// DailySales is one day of the sales series.
type DailySales struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// CategoryStat is the revenue and quantity sold for one category.
type CategoryStat struct {
	Category      string          `json:"category"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// OrderTotal is the minimal projection of an order used for revenue rollups.
type OrderTotal struct {
	CreatedAt   time.Time
	TotalAmount decimal.Decimal
}

// ItemQuantity is the summed quantity ordered of one menu item.
type ItemQuantity struct {
	MenuItemID int64
	Name       string
	Quantity   int
}

// SalesReport is returned by the admin sales endpoint.
type SalesReport struct {
	SalesData     []DailySales   `json:"salesData"`
	CategoryStats []CategoryStat `json:"categoryStats"`
}
