package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// RevenueStatuses are the states in which an order's total counts as revenue.
var RevenueStatuses = []OrderStatus{StatusDelivered, StatusReady}

// pipeline rank of each forward state; cancelled sits outside the pipeline.
var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusDelivered: 4,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the order may move from s to next. Status only
// moves forward along the pipeline; any non-terminal order may be cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// Customer is the contact snapshot recorded on an order.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Order is an immutable priced snapshot of a cart. Only Status and Notes change
// after creation.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Owner       Owner           `json:"owner"`
	Customer    Customer        `json:"customer"`
	Currency    Currency        `json:"currency" db:"currency"`
	Status      OrderStatus     `json:"status" db:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Notes       string          `json:"notes" db:"notes"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
	Lines       []OrderLine     `json:"lines"`
}

// TotalItems sums quantities across order lines.
func (o *Order) TotalItems() int {
	total := 0
	for _, l := range o.Lines {
		total += l.Quantity
	}
	return total
}

// OrderLine is a line item whose price was copied from the menu at checkout.
type OrderLine struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	OrderID    uuid.UUID       `json:"-" db:"order_id"`
	MenuItemID int64           `json:"menuItemId" db:"menu_item_id"`
	Name       string          `json:"name" db:"name"`
	Quantity   int             `json:"quantity" db:"quantity"`
	Price      decimal.Decimal `json:"price" db:"price"`
}

// Total returns quantity × snapshot price.
func (l OrderLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CheckoutRequest carries everything needed to materialise a cart into an order.
type CheckoutRequest struct {
	Owner    Owner    `json:"-"`
	Customer Customer `json:"customer"`
	Currency Currency `json:"currency"`
	Notes    string   `json:"notes"`
}

// UpdateOrderStatusRequest is the admin payload for moving an order along.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
	Notes  *string     `json:"notes,omitempty"`
}

// OrderCreatedEvent is published after a successful checkout.
type OrderCreatedEvent struct {
	OrderID   uuid.UUID       `json:"orderId"`
	Customer  Customer        `json:"customer"`
	Items     []OrderLine     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Currency  Currency        `json:"currency"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewOrderCreatedEvent builds the notification payload for o.
func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:   o.ID,
		Customer:  o.Customer,
		Items:     o.Lines,
		Total:     o.TotalAmount,
		Currency:  o.Currency,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}
