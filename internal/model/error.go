package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeInvalidParameter     = "INVALID_PARAMETER"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeInvalidPhone         = "INVALID_PHONE"
	ErrCodePoliciesNotAccepted  = "POLICIES_NOT_ACCEPTED"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidProduct       = "INVALID_PRODUCT"
	ErrCodeDuplicateProduct     = "DUPLICATE_PRODUCT"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeVariantNotFound      = "VARIANT_NOT_FOUND"
	ErrCodeDuplicateVariant     = "DUPLICATE_VARIANT"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeOutOfStock           = "OUT_OF_STOCK"
	ErrCodeVariantUnavailable   = "VARIANT_UNAVAILABLE"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeCartEmpty            = "CART_EMPTY"
	ErrCodeCartLineNotFound     = "CART_LINE_NOT_FOUND"
	ErrCodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	ErrCodeCODNotEligible       = "COD_NOT_ELIGIBLE"
	ErrCodeCouponInvalid        = "COUPON_INVALID"
	ErrCodeCouponExpired        = "COUPON_EXPIRED"
	ErrCodeCouponExhausted      = "COUPON_USAGE_LIMIT"
	ErrCodeCouponMinimumNotMet  = "COUPON_MINIMUM_NOT_MET"
	ErrCodeInvalidCouponRule    = "INVALID_COUPON_RULE"
	ErrCodeCouponNotFound       = "COUPON_NOT_FOUND"
	ErrCodeDuplicateCoupon      = "DUPLICATE_COUPON"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInvalidTransition    = "INVALID_STATUS_TRANSITION"
	ErrCodeOrderNotDeletable    = "ORDER_NOT_DELETABLE"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that errors built with NewDomainError
// compare equal to the sentinel carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// MissingField reports a required request field that was left empty.
func MissingField(field string) *DomainError {
	return NewDomainError(ErrCodeMissingField, fmt.Sprintf("%s is required", field))
}

// InvalidParameter reports a malformed path or query parameter.
func InvalidParameter(name string) *DomainError {
	return NewDomainError(ErrCodeInvalidParameter, fmt.Sprintf("invalid %s parameter", name))
}

// MinimumNotMet reports a subtotal below the coupon's configured minimum.
func MinimumNotMet(minimum decimal.Decimal) *DomainError {
	return NewDomainError(ErrCodeCouponMinimumNotMet, fmt.Sprintf("Minimum order amount is ₹%s", minimum.String()))
}

// InvalidProduct reports a catalogue write that breaks a product or variant rule.
func InvalidProduct(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidProduct, message)
}

// InsufficientStock reports an add that would take a line past its stock.
func InsufficientStock(stock int) *DomainError {
	return NewDomainError(ErrCodeInsufficientStock, fmt.Sprintf("Only %d left in stock", stock))
}

// Common domain errors
var (
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrDuplicateProduct     = NewDomainError(ErrCodeDuplicateProduct, "A product with this id already exists")
	ErrCategoryNotFound     = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrVariantNotFound      = NewDomainError(ErrCodeVariantNotFound, "Variant not found")
	ErrDuplicateVariant     = NewDomainError(ErrCodeDuplicateVariant, "This variant already exists for this product")
	ErrOutOfStock           = NewDomainError(ErrCodeOutOfStock, "Product is out of stock")
	ErrVariantUnavailable   = NewDomainError(ErrCodeVariantUnavailable, "Selected option is unavailable")
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrCartEmpty            = NewDomainError(ErrCodeCartEmpty, "Your cart is empty")
	ErrCartLineNotFound     = NewDomainError(ErrCodeCartLineNotFound, "Item is not in the cart")
	ErrInvalidPaymentMethod = NewDomainError(ErrCodeInvalidPaymentMethod, "Payment method must be online or cod")
	ErrCODNotEligible       = NewDomainError(ErrCodeCODNotEligible, "Cash on delivery is not available for one or more items in your cart")
	ErrPoliciesNotAccepted  = NewDomainError(ErrCodePoliciesNotAccepted, "Please agree to the store policies to continue")
	ErrInvalidPhone         = NewDomainError(ErrCodeInvalidPhone, "Please enter a valid 10 digit mobile number")
	ErrCouponInvalid        = NewDomainError(ErrCodeCouponInvalid, "Invalid coupon code")
	ErrCouponExpired        = NewDomainError(ErrCodeCouponExpired, "This coupon has expired")
	ErrCouponExhausted      = NewDomainError(ErrCodeCouponExhausted, "This coupon has reached its usage limit")
	ErrCouponMinimumNotMet  = NewDomainError(ErrCodeCouponMinimumNotMet, "Minimum order amount not met")
	ErrCouponNotFound       = NewDomainError(ErrCodeCouponNotFound, "Coupon not found")
	ErrDuplicateCoupon      = NewDomainError(ErrCodeDuplicateCoupon, "A coupon with this code already exists")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidStatus        = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidTransition    = NewDomainError(ErrCodeInvalidTransition, "Order cannot move to the requested status")
	ErrOrderNotDeletable    = NewDomainError(ErrCodeOrderNotDeletable, "Only delivered orders can be deleted")
)
