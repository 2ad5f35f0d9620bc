package service

import (
	"context"
	"fmt"
	"time"

	"royal-kart/internal/coupon"
	"royal-kart/internal/model"
	"royal-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon admin service.
func NewCouponService(couponRepo repository.CouponRepository, logger zerolog.Logger) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// List returns every coupon, newest first.
func (s *couponService) List(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.couponRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list coupons")
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// apply copies the request's rule fields onto c.
func apply(c *model.Coupon, req *model.CouponRequest) {
	c.Code = model.NormaliseCouponCode(req.Code)
	c.DiscountType = req.DiscountType
	c.DiscountValue = req.DiscountValue
	c.MinOrderAmount = req.MinOrderAmount
	c.MaxUses = req.MaxUses
	c.ExpiresAt = req.ExpiresAt
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

// Create validates the request and stores a new active coupon.
func (s *couponService) Create(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error) {
	if req == nil {
		return nil, model.MissingField("code")
	}

	now := time.Now().UTC()
	c := &model.Coupon{
		ID:        uuid.New(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(c, req)
	if err := coupon.ValidateRules(*c); err != nil {
		return nil, err
	}

	if err := s.couponRepo.Create(ctx, c); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info().Str("coupon_code", c.Code).Msg("coupon created")
	return c, nil
}

// Update replaces a coupon's rules. The usage count is left alone.
func (s *couponService) Update(ctx context.Context, id uuid.UUID, req *model.CouponRequest) (*model.Coupon, error) {
	if req == nil {
		return nil, model.MissingField("code")
	}

	c, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to get coupon")
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if c == nil {
		return nil, model.ErrCouponNotFound
	}

	apply(c, req)
	c.UpdatedAt = time.Now().UTC()
	if err := coupon.ValidateRules(*c); err != nil {
		return nil, err
	}

	if err := s.couponRepo.Update(ctx, c); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	s.logger.Info().Str("coupon_code", c.Code).Msg("coupon updated")
	return c, nil
}

// Delete removes a coupon. Orders keep the code they were placed with.
func (s *couponService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	s.logger.Info().Str("coupon_id", id.String()).Msg("coupon deleted")
	return nil
}
