package service

import (
	"context"
	"fmt"

	"royal-kart/internal/cart"
	"royal-kart/internal/events"
	"royal-kart/internal/model"
	"royal-kart/internal/repository"
	"royal-kart/internal/variant"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	store       cart.Store
	productRepo repository.ProductRepository
	publisher   events.Publisher
	maxQuantity int
	logger      zerolog.Logger
}

// NewCartService creates a new cart service. maxQuantity caps a single add
// or quantity change when the product reports no stock figure.
func NewCartService(
	store cart.Store,
	productRepo repository.ProductRepository,
	publisher events.Publisher,
	maxQuantity int,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		store:       store,
		productRepo: productRepo,
		publisher:   publisher,
		maxQuantity: maxQuantity,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the session's cart.
func (s *cartService) Get(ctx context.Context, session string) (*model.CartView, error) {
	c, err := s.store.Load(ctx, session)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", session).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	view := c.View()
	return &view, nil
}

// Add prices the selection and merges it into the cart. The merged line
// holds the old quantity plus the new one; an add that would pass the known
// stock is refused and leaves the line as it was.
func (s *cartService) Add(ctx context.Context, session string, req *model.AddToCartRequest) (*model.CartView, error) {
	if req == nil || req.ProductID == "" {
		return nil, model.MissingField("productId")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, options, err := s.lookup(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	res := variant.Resolve(*product, options, req.Selections)
	if !res.Available {
		s.logger.Debug().
			Str("product_id", product.ID).
			Str("reason", string(res.Reason)).
			Msg("add rejected, selection unavailable")
		if res.Source == variant.SourceVariant {
			return nil, model.ErrVariantUnavailable
		}
		return nil, model.ErrOutOfStock
	}

	line := model.CartLine{
		ProductID:          product.ID,
		Name:               product.Name,
		UnitPrice:          res.UnitPrice,
		DiscountPercentage: res.DiscountPercentage,
		Image:              product.PrimaryImage(),
		CashOnDelivery:     product.CashOnDelivery,
		Variant:            res.Variant,
	}
	// A single request never asks for more than the picker offers.
	quantity = min(quantity, s.ceiling(res.StockQuantity))

	return s.update(ctx, session, func(c *cart.Cart) error {
		key := line.Key()
		existing, ok := c.Line(key)
		if stock := res.StockQuantity; stock != nil && *stock > 0 && existing.Quantity+quantity > *stock {
			s.logger.Debug().
				Str("product_id", product.ID).
				Int("in_cart", existing.Quantity).
				Int("requested", quantity).
				Int("stock", *stock).
				Msg("add rejected, not enough stock")
			return model.InsufficientStock(*stock)
		}
		if ok {
			c.SetQuantity(key, existing.Quantity+quantity)
			return nil
		}
		line.Quantity = quantity
		c.Add(line)
		return nil
	})
}

// SetQuantity replaces the quantity of an existing line.
func (s *cartService) SetQuantity(ctx context.Context, session string, key model.LineKey, quantity int) (*model.CartView, error) {
	if quantity < 1 {
		return s.Get(ctx, session)
	}

	ceiling := s.maxQuantity
	product, options, err := s.lookup(ctx, key.ProductID)
	if err != nil {
		return nil, err
	}
	if product != nil {
		ceiling = s.ceiling(stockFor(product, options, key.VariantID))
	}

	return s.update(ctx, session, func(c *cart.Cart) error {
		existing, ok := c.Line(key)
		if !ok {
			return model.ErrCartLineNotFound
		}
		if target := min(quantity, ceiling); target != existing.Quantity {
			c.SetQuantity(key, target)
		}
		return nil
	})
}

// Remove deletes a line.
func (s *cartService) Remove(ctx context.Context, session string, key model.LineKey) (*model.CartView, error) {
	return s.update(ctx, session, func(c *cart.Cart) error {
		if !c.Remove(key) {
			return model.ErrCartLineNotFound
		}
		return nil
	})
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, session string) error {
	if err := s.store.Delete(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("session_id", session).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.publishUpdated(ctx, session, model.CartView{})
	return nil
}

// update runs fn against the stored cart and publishes a change event when
// fn actually mutated it.
func (s *cartService) update(ctx context.Context, session string, fn cart.UpdateFunc) (*model.CartView, error) {
	changed := false
	c, err := s.store.Update(ctx, session, func(c *cart.Cart) error {
		unsubscribe := c.Subscribe(func(model.CartView) { changed = true })
		defer unsubscribe()
		return fn(c)
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("session_id", session).Msg("failed to update cart")
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	view := c.View()
	if changed {
		s.publishUpdated(ctx, session, view)
	}
	return &view, nil
}

func (s *cartService) publishUpdated(ctx context.Context, session string, view model.CartView) {
	publish(ctx, s.publisher, s.logger, events.New(events.CartUpdated, map[string]any{
		"sessionId": session,
		"itemCount": view.ItemCount,
		"subtotal":  view.Subtotal.StringFixed(2),
	}))
}

func (s *cartService) lookup(ctx context.Context, productID string) (*model.Product, []model.VariantOption, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to get product")
		return nil, nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, nil, nil
	}

	options, err := s.productRepo.ListVariantOptions(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to list variant options")
		return nil, nil, fmt.Errorf("failed to get product variants: %w", err)
	}
	return product, options, nil
}

// ceiling is the most units a single add or quantity change may ask for.
func (s *cartService) ceiling(stock *int) int {
	if stock != nil && *stock > 0 {
		return *stock
	}
	return s.maxQuantity
}

// stockFor returns the stock figure behind a cart line.
func stockFor(product *model.Product, options []model.VariantOption, variantID string) *int {
	if variantID == "" {
		return product.StockQuantity
	}
	for _, o := range options {
		if o.VariantID == variantID {
			stock := o.StockQuantity
			return &stock
		}
	}
	return nil
}
