package coupon

import (
	"context"
	"time"

	"royal-kart/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Application is an accepted coupon together with the discount it grants.
type Application struct {
	Coupon   model.Coupon    `json:"coupon"`
	Discount decimal.Decimal `json:"discount"`
}

// Validator defines the interface for coupon eligibility checks.
type Validator interface {
	// Apply looks the code up and checks it against subtotal. The checks run
	// in order: unknown or inactive, expired, usage limit, minimum amount.
	// The first failure is returned as a *model.DomainError.
	Apply(ctx context.Context, code string, subtotal decimal.Decimal) (*Application, error)
}

// Lookup finds an active coupon by code. Returns nil when none matches.
type Lookup interface {
	GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error)
}

// Loader defines the interface for reading coupon seed files.
type Loader interface {
	// Load reads a gzipped YAML seed file and returns its coupons.
	Load(ctx context.Context, path string) ([]model.Coupon, error)
}

// CheckEligibility applies the coupon's rules to subtotal at time now.
func CheckEligibility(c model.Coupon, subtotal decimal.Decimal, now time.Time) error {
	if !c.IsActive {
		return model.ErrCouponInvalid
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return model.ErrCouponExpired
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return model.ErrCouponExhausted
	}
	if subtotal.LessThan(c.MinOrderAmount) {
		return model.MinimumNotMet(c.MinOrderAmount)
	}
	return nil
}

// Discount computes the amount the coupon takes off subtotal, clamped to
// [0, subtotal].
func Discount(c model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	var d decimal.Decimal
	switch c.DiscountType {
	case model.DiscountPercentage:
		d = subtotal.Mul(c.DiscountValue).Div(hundred)
	case model.DiscountFixed:
		d = decimal.Min(c.DiscountValue, subtotal)
	default:
		return decimal.Zero
	}

	if d.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(d, subtotal)
}

// ValidateRules checks a coupon definition before it is saved.
func ValidateRules(c model.Coupon) error {
	switch {
	case c.Code == "":
		return model.MissingField("code")
	case !c.DiscountType.Valid():
		return model.NewDomainError(model.ErrCodeInvalidCouponRule, "Discount type must be percentage or fixed")
	case !c.DiscountValue.IsPositive():
		return model.NewDomainError(model.ErrCodeInvalidCouponRule, "Discount value must be greater than zero")
	case c.DiscountType == model.DiscountPercentage && c.DiscountValue.GreaterThan(hundred):
		return model.NewDomainError(model.ErrCodeInvalidCouponRule, "Percentage discount cannot exceed 100")
	case c.MinOrderAmount.IsNegative():
		return model.NewDomainError(model.ErrCodeInvalidCouponRule, "Minimum order amount cannot be negative")
	case c.MaxUses != nil && *c.MaxUses < 1:
		return model.NewDomainError(model.ErrCodeInvalidCouponRule, "Max uses must be at least 1")
	}
	return nil
}
