package coupon

import (
	"context"
	"fmt"
	"time"

	"royal-kart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// validator implements Validator against the coupon table.
type validator struct {
	lookup Lookup
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a validator.
type Option func(*validator)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *validator) {
		v.now = now
	}
}

// NewValidator creates a coupon validator backed by lookup.
func NewValidator(lookup Lookup, logger zerolog.Logger, opts ...Option) Validator {
	v := &validator{
		lookup: lookup,
		now:    time.Now,
		logger: logger.With().Str("component", "coupon-validator").Logger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Apply checks the coupon named by code against subtotal and computes its
// discount. Nothing is written; usage is only counted when an order is placed.
func (v *validator) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (*Application, error) {
	code = model.NormaliseCouponCode(code)
	if code == "" {
		return nil, model.ErrCouponInvalid
	}

	c, err := v.lookup.GetActiveByCode(ctx, code)
	if err != nil {
		v.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to look up coupon")
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if c == nil {
		v.logger.Debug().Str("coupon_code", code).Msg("coupon not found or inactive")
		return nil, model.ErrCouponInvalid
	}

	if err := CheckEligibility(*c, subtotal, v.now()); err != nil {
		v.logger.Debug().
			Str("coupon_code", code).
			Str("subtotal", subtotal.String()).
			Str("reason", err.Error()).
			Msg("coupon rejected")
		return nil, err
	}

	discount := Discount(*c, subtotal)

	v.logger.Debug().
		Str("coupon_code", code).
		Str("subtotal", subtotal.String()).
		Str("discount", discount.String()).
		Msg("coupon applied")

	return &Application{Coupon: *c, Discount: discount}, nil
}
