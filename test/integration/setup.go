package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"royal-kart/internal/cart"
	"royal-kart/internal/coupon"
	"royal-kart/internal/database"
	"royal-kart/internal/events"
	"royal-kart/internal/handler"
	"royal-kart/internal/model"
	"royal-kart/internal/orderid"
	"royal-kart/internal/repository"
	"royal-kart/internal/router"
	"royal-kart/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the storefront schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Catalogue used by the end-to-end tests:
//
//	P001 silk saree, COD, one colour dimension: red (in stock 3) and green (sold out)
//	P002 cotton kurta, prepaid only, no stock figure
//	P003 zari dupatta, sold out
const (
	sareeID   = "P001"
	kurtaID   = "P002"
	dupattaID = "P003"

	redVariant   = "V-P001-RED"
	greenVariant = "V-P001-GREEN"
)

// SeedCatalogue inserts the test products and variants.
func SeedCatalogue(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id       string
		name     string
		price    string
		discount string
		stock    *int
		status   model.StockStatus
		cod      bool
	}{
		{sareeID, "Banarasi Silk Saree", "5000", "10", intPtr(20), model.StockInStock, true},
		{kurtaID, "Cotton Kurta", "1299", "0", nil, model.StockInStock, false},
		{dupattaID, "Zari Dupatta", "899", "0", intPtr(0), model.StockSoldOut, true},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, name, price, discount_percentage, stock_quantity, stock_status, cash_on_delivery)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.id, p.name, decimal.RequireFromString(p.price), decimal.RequireFromString(p.discount),
			p.stock, p.status, p.cod,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}

	statements := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO product_attributes (id, name, sort_order) VALUES ($1, $2, $3)`,
			[]any{"color", "Colour", 1}},
		{`INSERT INTO product_attribute_values (id, attribute_id, value, sort_order) VALUES ($1, $2, $3, $4)`,
			[]any{"red", "color", "Red", 1}},
		{`INSERT INTO product_attribute_values (id, attribute_id, value, sort_order) VALUES ($1, $2, $3, $4)`,
			[]any{"green", "color", "Green", 2}},
		{`INSERT INTO product_variants (id, product_id, attribute_value_id, price, stock_quantity, is_available)
		  VALUES ($1, $2, $3, $4, $5, $6)`,
			[]any{redVariant, sareeID, "red", decimal.NewFromInt(5200), 3, true}},
		{`INSERT INTO product_variants (id, product_id, attribute_value_id, price, stock_quantity, is_available)
		  VALUES ($1, $2, $3, $4, $5, $6)`,
			[]any{greenVariant, sareeID, "green", decimal.NewFromInt(4800), 0, true}},
	}
	for _, s := range statements {
		if _, err := pool.Exec(ctx, s.sql, s.args...); err != nil {
			t.Fatalf("failed to seed variants: %v", err)
		}
	}
}

// SeedCoupon inserts an active coupon. A nil maxUses means unlimited.
func SeedCoupon(t *testing.T, pool *pgxpool.Pool, code string, discountType model.DiscountType, value string, maxUses *int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO coupons (id, code, discount_type, discount_value, max_uses)
		VALUES ($1, $2, $3, $4, $5)`,
		id, code, discountType, decimal.RequireFromString(value), maxUses,
	)
	if err != nil {
		t.Fatalf("failed to seed coupon %s: %v", code, err)
	}
	return id
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"order_messages", "order_items", "orders", "coupons",
		"product_variants", "product_attribute_values", "product_attributes", "products", "categories",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// SetupTestServer wires the full HTTP stack against the test database. A nil
// store means in-memory carts.
func SetupTestServer(t *testing.T, testDB *TestDB, store cart.Store) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	if store == nil {
		store = cart.NewMemoryStore(time.Hour)
	}
	publisher := events.NewNopPublisher()

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	couponRepo := repository.NewCouponRepository(testDB.Pool, logger)
	validator := coupon.NewValidator(couponRepo, logger)

	orderService := service.NewOrderService(orderRepo, publisher, logger)

	return router.New(router.Handlers{
		Product: handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		Cart: handler.NewCartHandler(
			service.NewCartService(store, productRepo, publisher, 99, logger), logger),
		Checkout: handler.NewCheckoutHandler(
			service.NewCheckoutService(store, orderRepo, couponRepo, validator, orderid.New(), publisher, 3, logger), logger),
		Order: handler.NewOrderHandler(orderService, logger),
		Admin: handler.NewAdminHandler(orderService, service.NewCouponService(couponRepo, logger), logger),
		Catalog: handler.NewCatalogHandler(
			service.NewCatalogService(repository.NewCatalogRepository(testDB.Pool, logger), productRepo, logger), logger),
	}, router.Options{
		APIKey:         testAPIKey,
		AllowedOrigins: []string{"http://localhost:3000"},
		SessionCookie:  "cart_session",
		SessionTTL:     time.Hour,
		Ready:          database.Ready(testDB.Pool),
	}, logger)
}

func intPtr(v int) *int { return &v }
