package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType is how a coupon's value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Coupon is a named discount rule with eligibility constraints and a usage cap.
type Coupon struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Code           string          `json:"code" db:"code"`
	DiscountType   DiscountType    `json:"discountType" db:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discountValue" db:"discount_value"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount" db:"min_order_amount"`
	MaxUses        *int            `json:"maxUses,omitempty" db:"max_uses"`
	UsedCount      int             `json:"usedCount" db:"used_count"`
	IsActive       bool            `json:"isActive" db:"is_active"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// NormaliseCouponCode trims and upper-cases a code. Stored codes are always
// normalised, which makes lookups case-insensitive.
func NormaliseCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponRequest is the admin payload for creating or editing a coupon.
type CouponRequest struct {
	Code           string          `json:"code"`
	DiscountType   DiscountType    `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
	MaxUses        *int            `json:"maxUses,omitempty"`
	IsActive       *bool           `json:"isActive,omitempty"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty"`
}

// CouponApplyRequest is the shopper payload for trying a coupon at checkout.
type CouponApplyRequest struct {
	Code string `json:"code"`
}
