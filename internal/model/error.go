package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeMissingField            = "MISSING_FIELD"
	ErrCodeItemUnavailable         = "ITEM_UNAVAILABLE"
	ErrCodeMenuItemNotFound        = "MENU_ITEM_NOT_FOUND"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeInvalidPrice            = "INVALID_PRICE"
	ErrCodeLineNotFound            = "LINE_NOT_FOUND"
	ErrCodeEmptyCart               = "EMPTY_CART"
	ErrCodeInvalidOwner            = "INVALID_OWNER"
	ErrCodeInvalidCurrency         = "INVALID_CURRENCY"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus           = "INVALID_STATUS_TRANSITION"
	ErrCodeCouponNotFound          = "COUPON_NOT_FOUND"
	ErrCodeCouponExpiredOrInactive = "COUPON_EXPIRED_OR_INACTIVE"
	ErrCodeCouponMinimumNotMet     = "COUPON_MINIMUM_NOT_MET"
	ErrCodeCouponAlreadyApplied    = "COUPON_ALREADY_APPLIED"
	ErrCodeConcurrentModification  = "CONCURRENT_MODIFICATION"
	ErrCodeReviewExists            = "REVIEW_EXISTS"
	ErrCodeReviewNotFound          = "REVIEW_NOT_FOUND"
	ErrCodeInvalidRating           = "INVALID_RATING"
	ErrCodeInvalidReview           = "INVALID_REVIEW"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// AsDomainError reports whether err wraps a *DomainError and returns it.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrItemUnavailable         = NewDomainError(ErrCodeItemUnavailable, "Menu item is not available")
	ErrMenuItemNotFound        = NewDomainError(ErrCodeMenuItemNotFound, "Menu item not found")
	ErrInvalidQuantity         = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrQuantityTooLarge        = NewDomainError(ErrCodeInvalidQuantity, "Quantity per cart line must not exceed 999")
	ErrInvalidPrice            = NewDomainError(ErrCodeInvalidPrice, "Price must not be negative")
	ErrLineNotFound            = NewDomainError(ErrCodeLineNotFound, "Cart line not found")
	ErrEmptyCart               = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrInvalidOwner            = NewDomainError(ErrCodeInvalidOwner, "Exactly one of user ID or session key is required")
	ErrInvalidCurrency         = NewDomainError(ErrCodeInvalidCurrency, "Currency must be one of INR, GBP or EUR")
	ErrOrderNotFound           = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidStatusTransition = NewDomainError(ErrCodeInvalidStatus, "Order status cannot move to the requested state")
	ErrCouponNotFound          = NewDomainError(ErrCodeCouponNotFound, "Invalid coupon code")
	ErrCouponExpiredOrInactive = NewDomainError(ErrCodeCouponExpiredOrInactive, "This coupon has expired or is no longer valid")
	ErrCouponMinimumNotMet     = NewDomainError(ErrCodeCouponMinimumNotMet, "Order total is below the coupon minimum amount")
	ErrCouponAlreadyApplied    = NewDomainError(ErrCodeCouponAlreadyApplied, "A different coupon has already been applied to this order")
	ErrConcurrentModification  = NewDomainError(ErrCodeConcurrentModification, "The resource was modified concurrently, please retry")
	ErrReviewExists            = NewDomainError(ErrCodeReviewExists, "You have already reviewed this item")
	ErrReviewNotFound          = NewDomainError(ErrCodeReviewNotFound, "Review not found")
	ErrInvalidRating           = NewDomainError(ErrCodeInvalidRating, "Rating must be between 1 and 5")
	ErrInvalidReview           = NewDomainError(ErrCodeInvalidReview, "Review title and comment are required")
)
