package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"royal-kart/internal/cart"
	"royal-kart/internal/coupon"
	"royal-kart/internal/events"
	"royal-kart/internal/model"
	"royal-kart/internal/orderid"
	"royal-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	store      cart.Store
	orderRepo  repository.OrderRepository
	couponRepo repository.CouponRepository
	validator  coupon.Validator
	ids        orderid.Generator
	publisher  events.Publisher
	attempts   int
	logger     zerolog.Logger
}

// NewCheckoutService creates the order placement service. attempts bounds
// how many order ids are tried when one collides with an existing order.
func NewCheckoutService(
	store cart.Store,
	orderRepo repository.OrderRepository,
	couponRepo repository.CouponRepository,
	validator coupon.Validator,
	ids orderid.Generator,
	publisher events.Publisher,
	attempts int,
	logger zerolog.Logger,
) CheckoutService {
	if attempts < 1 {
		attempts = 1
	}
	return &checkoutService{
		store:      store,
		orderRepo:  orderRepo,
		couponRepo: couponRepo,
		validator:  validator,
		ids:        ids,
		publisher:  publisher,
		attempts:   attempts,
		logger:     logger.With().Str("service", "checkout").Logger(),
	}
}

// pricing is a cart's money breakdown rounded to paise.
type pricing struct {
	subtotal decimal.Decimal
	discount decimal.Decimal
	total    decimal.Decimal
	coupon   *model.Coupon
}

func price(subtotal decimal.Decimal, app *coupon.Application) pricing {
	p := pricing{
		subtotal: subtotal.Round(2),
		discount: decimal.Zero,
	}
	if app != nil {
		p.discount = app.Discount.Round(2)
		p.coupon = &app.Coupon
	}
	p.total = p.subtotal.Sub(p.discount)
	return p
}

func codAvailable(lines []model.CartLine) bool {
	if len(lines) == 0 {
		return false
	}
	for _, l := range lines {
		if !l.CashOnDelivery {
			return false
		}
	}
	return true
}

func (s *checkoutService) load(ctx context.Context, session string) (*cart.Cart, error) {
	c, err := s.store.Load(ctx, session)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", session).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

func (s *checkoutService) applyCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*coupon.Application, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	app, err := s.validator.Apply(ctx, code, subtotal)
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to validate coupon")
		}
		return nil, err
	}
	return app, nil
}

// Quote prices the session's cart with an optional coupon.
func (s *checkoutService) Quote(ctx context.Context, session, couponCode string) (*model.Quote, error) {
	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	subtotal := c.DiscountedTotal()
	app, err := s.applyCoupon(ctx, couponCode, subtotal)
	if err != nil {
		return nil, err
	}

	p := price(subtotal, app)
	q := &model.Quote{
		Subtotal:       p.subtotal,
		CouponDiscount: p.discount,
		Total:          p.total,
		ItemCount:      c.ItemCount(),
		CODAvailable:   codAvailable(c.Lines()),
	}
	if p.coupon != nil {
		q.CouponCode = p.coupon.Code
	}
	return q, nil
}

// validateCheckout checks the request fields and returns the customer with
// normalised values.
func validateCheckout(req *model.CheckoutRequest) (model.Customer, error) {
	if req == nil {
		return model.Customer{}, model.MissingField("customer")
	}

	customer := model.Customer{
		Name:    strings.TrimSpace(req.Customer.Name),
		Email:   strings.TrimSpace(req.Customer.Email),
		Address: strings.TrimSpace(req.Customer.Address),
	}
	if customer.Name == "" {
		return customer, model.MissingField("name")
	}
	if strings.TrimSpace(req.Customer.Phone) == "" {
		return customer, model.MissingField("phone")
	}
	phone, err := NormalisePhone(req.Customer.Phone)
	if err != nil {
		return customer, err
	}
	customer.Phone = phone
	if customer.Address == "" {
		return customer, model.MissingField("address")
	}
	if !req.PaymentMethod.Valid() {
		return customer, model.ErrInvalidPaymentMethod
	}
	if !req.AcceptPolicies {
		return customer, model.ErrPoliciesNotAccepted
	}
	return customer, nil
}

// PlaceOrder validates the checkout, then writes the order, its items and
// the coupon redemption in one transaction. The cart is cleared only after
// commit.
func (s *checkoutService) PlaceOrder(ctx context.Context, session string, req *model.CheckoutRequest) (*model.PlacedOrder, error) {
	customer, err := validateCheckout(req)
	if err != nil {
		return nil, err
	}

	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, model.ErrCartEmpty
	}
	if req.PaymentMethod == model.PaymentCOD && !codAvailable(lines) {
		s.logger.Debug().Str("session_id", session).Msg("cash on delivery not available for cart")
		return nil, model.ErrCODNotEligible
	}

	app, err := s.applyCoupon(ctx, req.CouponCode, c.DiscountedTotal())
	if err != nil {
		return nil, err
	}
	p := price(c.DiscountedTotal(), app)

	now := time.Now().UTC()
	order := &model.Order{
		ID:             uuid.New(),
		CustomerName:   customer.Name,
		CustomerPhone:  customer.Phone,
		Address:        customer.Address,
		Status:         model.StatusPending,
		PaymentMethod:  req.PaymentMethod,
		Subtotal:       p.subtotal,
		CouponDiscount: p.discount,
		Total:          p.total,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if customer.Email != "" {
		order.CustomerEmail = &customer.Email
	}
	if p.coupon != nil {
		order.CouponCode = &p.coupon.Code
	}

	items := make([]model.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = model.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ProductID:    l.ProductID,
			ProductName:  l.Name,
			ProductPrice: l.EffectiveUnitPrice().Round(2),
			Quantity:     l.Quantity,
			VariantInfo:  l.Variant,
		}
	}

	for attempt := 1; ; attempt++ {
		order.OrderID, err = s.ids.Generate()
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to generate order id")
			return nil, fmt.Errorf("failed to place order: %w", err)
		}

		err = s.persist(ctx, order, items, p.coupon)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateOrderID) && attempt < s.attempts {
			s.logger.Warn().Str("order_id", order.OrderID).Int("attempt", attempt).Msg("order id collision, retrying")
			continue
		}
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err := s.store.Delete(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("session_id", session).Str("order_id", order.OrderID).Msg("order placed but cart not cleared")
	}

	s.logger.Info().
		Str("order_id", order.OrderID).
		Int("item_count", len(items)).
		Str("total", order.Total.StringFixed(2)).
		Str("payment_method", string(order.PaymentMethod)).
		Msg("order placed")

	publish(ctx, s.publisher, s.logger, events.New(events.OrderPlaced, map[string]any{
		"orderId":       order.OrderID,
		"total":         order.Total.StringFixed(2),
		"paymentMethod": order.PaymentMethod,
		"itemCount":     c.ItemCount(),
	}))

	return &model.PlacedOrder{
		OrderID: order.OrderID,
		Total:   order.Total,
		Status:  order.Status,
	}, nil
}

// persist writes one attempt of the order inside its own transaction.
func (s *checkoutService) persist(ctx context.Context, order *model.Order, items []model.OrderItem, applied *model.Coupon) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Str("order_id", order.OrderID).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return err
	}

	if applied != nil {
		if err = s.couponRepo.IncrementUsage(ctx, tx, applied.ID); err != nil {
			s.logger.Info().Err(err).Str("coupon_code", applied.Code).Msg("coupon redemption refused")
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to commit transaction")
		return err
	}
	return nil
}
