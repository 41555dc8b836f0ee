package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType selects how a coupon reduces an order total.
type DiscountType string

const (
	DiscountPercentage   DiscountType = "percentage"
	DiscountFixed        DiscountType = "fixed"
	DiscountFreeShipping DiscountType = "free_shipping"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	switch t {
	case DiscountPercentage, DiscountFixed, DiscountFreeShipping:
		return true
	}
	return false
}

// Coupon is a promotional code. Whether it can currently be used is derived
// from its window, active flag and usage counters.
type Coupon struct {
	ID              int64            `json:"id" db:"id"`
	Code            string           `json:"code" db:"code"`
	Name            string           `json:"name" db:"name"`
	Description     string           `json:"description" db:"description"`
	DiscountType    DiscountType     `json:"discountType" db:"discount_type"`
	DiscountValue   decimal.Decimal  `json:"discountValue" db:"discount_value"`
	MinimumAmount   decimal.Decimal  `json:"minimumAmount" db:"minimum_amount"`
	MaximumDiscount *decimal.Decimal `json:"maximumDiscount,omitempty" db:"maximum_discount"`
	UsageLimit      *int             `json:"usageLimit,omitempty" db:"usage_limit"`
	UsedCount       int              `json:"usedCount" db:"used_count"`
	ValidFrom       time.Time        `json:"validFrom" db:"valid_from"`
	ValidTo         time.Time        `json:"validTo" db:"valid_to"`
	IsActive        bool             `json:"isActive" db:"is_active"`
}

// Discount is the priced result of evaluating a coupon against an order total.
type Discount struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	DiscountType  DiscountType    `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	Amount        decimal.Decimal `json:"discountAmount"`
	FreeShipping  bool            `json:"freeShipping"`
}

// CouponUsage records that a coupon was consumed by an order.
type CouponUsage struct {
	ID             int64           `json:"id" db:"id"`
	CouponID       int64           `json:"couponId" db:"coupon_id"`
	Code           string          `json:"code" db:"code"`
	UserID         string          `json:"userId,omitempty" db:"user_id"`
	OrderID        uuid.UUID       `json:"orderId" db:"order_id"`
	DiscountAmount decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	UsedAt         time.Time       `json:"usedAt" db:"used_at"`
}

// QuoteCouponRequest asks for the discount a code would give on a total.
type QuoteCouponRequest struct {
	Code  string          `json:"code"`
	Total decimal.Decimal `json:"total"`
}

// ApplyCouponRequest applies a code to an existing order.
type ApplyCouponRequest struct {
	Code string `json:"code"`
}
