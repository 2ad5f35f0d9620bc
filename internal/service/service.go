package service

import (
	"context"
	"errors"

	"royal-kart/internal/events"
	"royal-kart/internal/model"
	"royal-kart/internal/variant"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductService defines operations for browsing the catalogue.
type ProductService interface {
	// GetAll retrieves products with pagination. A non-empty categoryID
	// limits the page to that category.
	GetAll(ctx context.Context, categoryID string, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetDetail returns the product with its variant dimensions and the
	// pricing that applies to selections.
	GetDetail(ctx context.Context, id string, selections []model.Selection) (*ProductDetail, error)
}

// ProductDetail is the product page payload.
type ProductDetail struct {
	Product    model.Product       `json:"product"`
	Dimensions []variant.Dimension `json:"dimensions"`
	Resolution variant.Resolution  `json:"resolution"`
}

// CartService defines operations on a session's cart.
type CartService interface {
	Get(ctx context.Context, session string) (*model.CartView, error)

	// Add resolves the product and selections to a priced line and merges it
	// into the cart. With no selections this is the listing quick-add.
	Add(ctx context.Context, session string, req *model.AddToCartRequest) (*model.CartView, error)

	// SetQuantity replaces a line's quantity, clamped to available stock.
	// A quantity below one leaves the cart unchanged.
	SetQuantity(ctx context.Context, session string, key model.LineKey, quantity int) (*model.CartView, error)

	Remove(ctx context.Context, session string, key model.LineKey) (*model.CartView, error)
	Clear(ctx context.Context, session string) error
}

// CheckoutService prices carts and turns them into orders.
type CheckoutService interface {
	// Quote prices the session's cart, with the coupon applied when
	// couponCode is non-empty. It never records coupon usage.
	Quote(ctx context.Context, session, couponCode string) (*model.Quote, error)

	// PlaceOrder persists the cart as an order and empties the cart.
	PlaceOrder(ctx context.Context, session string, req *model.CheckoutRequest) (*model.PlacedOrder, error)
}

// OrderService covers order tracking and administration.
type OrderService interface {
	List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)
	Get(ctx context.Context, orderID string) (*model.OrderDetail, error)

	// Track returns the order only when phone matches the one it was placed with.
	Track(ctx context.Context, orderID, phone string) (*model.OrderDetail, error)

	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
	Delete(ctx context.Context, orderID string) error
	AddCustomerMessage(ctx context.Context, orderID, phone, message string) (*model.OrderMessage, error)
	AddAdminMessage(ctx context.Context, orderID, message string) (*model.OrderMessage, error)
}

// CouponService defines coupon administration.
type CouponService interface {
	List(ctx context.Context) ([]model.Coupon, error)
	Create(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, req *model.CouponRequest) (*model.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CatalogService is the admin side of the catalogue: categories, products
// and their variants.
type CatalogService interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error)
	CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, req *model.CategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, req *model.ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, req *model.ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// CreateVariant adds a variant keyed by an existing attribute value.
	// Price defaults to the product's base price.
	CreateVariant(ctx context.Context, productID string, req *model.VariantRequest) (*model.Variant, error)
	UpdateVariant(ctx context.Context, productID, variantID string, req *model.VariantRequest) (*model.Variant, error)
	DeleteVariant(ctx context.Context, productID, variantID string) error
}

// isDomainError reports whether err carries a *model.DomainError.
func isDomainError(err error) bool {
	var domainErr *model.DomainError
	return errors.As(err, &domainErr)
}

// publish emits an event. Failures are logged and otherwise ignored.
func publish(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", string(event.Type)).Msg("event not published")
	}
}
