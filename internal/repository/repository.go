package repository

import (
	"context"
	"errors"

	"royal-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateOrderID is returned by CreateOrder when the human-readable order
// identifier is already taken. The transaction is unusable afterwards.
var ErrDuplicateOrderID = errors.New("order identifier already exists")

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves products with pagination support. A non-empty
	// categoryID restricts the page to that category.
	GetAll(ctx context.Context, categoryID string, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// ListVariantOptions returns the product's variants joined with their
	// attribute values, ordered by attribute then value sort order.
	ListVariantOptions(ctx context.Context, productID string) ([]model.VariantOption, error)
}

// CatalogRepository covers the admin writes to categories, products and
// variants. Reads for shoppers stay on ProductRepository.
type CatalogRepository interface {
	// ListCategories returns categories by sort order. activeOnly hides
	// the ones switched off.
	ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error)

	// GetCategory returns nil when absent.
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error

	// DeleteCategory removes the category. Its products stay, uncategorised.
	DeleteCategory(ctx context.Context, id string) error

	// CreateProduct returns model.ErrDuplicateProduct for a taken id and
	// model.ErrCategoryNotFound for an unknown category.
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error

	// DeleteProduct removes the product and, by cascade, its variants.
	// Placed orders keep their item snapshots.
	DeleteProduct(ctx context.Context, id string) error

	// GetVariant returns nil when absent.
	GetVariant(ctx context.Context, id string) (*model.Variant, error)

	// CreateVariant returns model.ErrDuplicateVariant when the product already
	// has a variant for the attribute value.
	CreateVariant(ctx context.Context, variant *model.Variant) error
	UpdateVariant(ctx context.Context, variant *model.Variant) error
	DeleteVariant(ctx context.Context, id string) error
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// GetActiveByCode looks up an active coupon by its normalised code.
	// Returns nil when no active coupon carries the code.
	GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Create(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Upsert inserts the coupon or updates the rules of the one sharing its
	// code. used_count is never overwritten.
	Upsert(ctx context.Context, coupon *model.Coupon) error

	// IncrementUsage adds one redemption inside tx, but only while the coupon
	// is below its cap. Returns model.ErrCouponExhausted when no row qualified.
	IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByOrderID retrieves an order by its human-readable identifier.
	// Returns nil when absent.
	GetByOrderID(ctx context.Context, orderID string) (*model.Order, error)

	GetItems(ctx context.Context, id uuid.UUID) ([]model.OrderItem, error)

	// List returns orders newest first. An empty status matches all.
	List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)

	// UpdateStatus moves the order from one status to another. It is a
	// compare-and-set on the current status and returns false when the order
	// was not in status from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error)

	// Delete removes the order and, by cascade, its items and messages.
	Delete(ctx context.Context, id uuid.UUID) error

	AddMessage(ctx context.Context, msg *model.OrderMessage) error
	ListMessages(ctx context.Context, id uuid.UUID) ([]model.OrderMessage, error)
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// isUniqueViolation reports whether err is a unique constraint failure on constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

// isForeignKeyViolation reports whether err is a foreign key failure on constraint.
func isForeignKeyViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == foreignKeyViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}
