package coupon

import (
	"strings"
	"time"

	"coffeeshop/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// NormalizeCode trims surrounding whitespace and upper-cases a promo code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValid reports whether c can be used at now: it must be active, inside its
// validity window (bounds inclusive) and below its usage limit if one is set.
func IsValid(c *model.Coupon, now time.Time) bool {
	if c == nil || !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}

// CalculateDiscount returns the discount c gives on total, ignoring validity and
// the minimum amount. Percentage discounts are capped by MaximumDiscount when it
// is positive; a zero or negative cap means uncapped. Fixed discounts never
// exceed the total. Free shipping is priced at zero
// here; the fee waiver belongs to shipping.
func CalculateDiscount(c *model.Coupon, total decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case model.DiscountPercentage:
		discount = total.Mul(c.DiscountValue).Div(hundred)
		if c.MaximumDiscount != nil && c.MaximumDiscount.IsPositive() && discount.GreaterThan(*c.MaximumDiscount) {
			discount = *c.MaximumDiscount
		}
	case model.DiscountFixed:
		discount = decimal.Min(c.DiscountValue, total)
	default:
		discount = decimal.Zero
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount.Round(2)
}

// Evaluate validates c at now and prices it against total.
func Evaluate(c *model.Coupon, total decimal.Decimal, now time.Time) (model.Discount, error) {
	if !IsValid(c, now) {
		return model.Discount{}, model.ErrCouponExpiredOrInactive
	}
	if total.LessThan(c.MinimumAmount) {
		return model.Discount{}, model.ErrCouponMinimumNotMet
	}

	return model.Discount{
		Code:          c.Code,
		Name:          c.Name,
		Description:   c.Description,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		Amount:        CalculateDiscount(c, total),
		FreeShipping:  c.DiscountType == model.DiscountFreeShipping,
	}, nil
}
