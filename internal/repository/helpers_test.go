package repository

import (
	"context"
	"testing"
	"time"

	"royal-kart/internal/database"
	"royal-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container with the storefront schema applied.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func intPtr(v int) *int { return &v }

func seedProduct(t *testing.T, pool *pgxpool.Pool, p model.Product) {
	t.Helper()
	if p.StockStatus == "" {
		p.StockStatus = model.StockInStock
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, name, price, discount_percentage, stock_quantity, stock_status,
		                      cash_on_delivery, image_url, images, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		p.ID, p.Name, p.Price, p.DiscountPercentage, p.StockQuantity, p.StockStatus,
		p.CashOnDelivery, p.ImageURL, append([]string{}, p.Images...), p.CategoryID, p.CreatedAt,
	)
	require.NoError(t, err)
}

func seedCategory(t *testing.T, pool *pgxpool.Pool, id, name string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO categories (id, name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

// seedVariant inserts an attribute (if new), a value and a variant row.
func seedVariant(t *testing.T, pool *pgxpool.Pool, o model.VariantOption) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO product_attributes (id, name, sort_order) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`, o.AttributeID, o.AttributeName, o.AttributeOrder)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO product_attribute_values (id, attribute_id, value, sort_order) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`, o.ValueID, o.AttributeID, o.Value, o.ValueOrder)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO product_variants (id, product_id, attribute_value_id, price, stock_quantity, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.VariantID, o.ProductID, o.ValueID, o.Price, o.StockQuantity, o.IsAvailable)
	require.NoError(t, err)
}

func newTestCoupon(code string, discountType model.DiscountType, value int64) *model.Coupon {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Coupon{
		ID:             uuid.New(),
		Code:           code,
		DiscountType:   discountType,
		DiscountValue:  decimal.NewFromInt(value),
		MinOrderAmount: decimal.Zero,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
