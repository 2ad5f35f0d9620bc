package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema is the storefront DDL. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	sort_order  INTEGER NOT NULL DEFAULT 0,
	is_active   BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	price               NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
	discount_percentage NUMERIC(5, 2) NOT NULL DEFAULT 0 CHECK (discount_percentage >= 0 AND discount_percentage <= 100),
	stock_quantity      INTEGER CHECK (stock_quantity >= 0),
	stock_status        TEXT NOT NULL DEFAULT 'in_stock' CHECK (stock_status IN ('in_stock', 'low_stock', 'sold_out')),
	cash_on_delivery    BOOLEAN NOT NULL DEFAULT FALSE,
	image_url           TEXT NOT NULL DEFAULT '',
	images              TEXT[] NOT NULL DEFAULT '{}',
	category_id         TEXT REFERENCES categories(id) ON DELETE SET NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);

CREATE TABLE IF NOT EXISTS product_attributes (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS product_attribute_values (
	id           TEXT PRIMARY KEY,
	attribute_id TEXT NOT NULL REFERENCES product_attributes(id) ON DELETE CASCADE,
	value        TEXT NOT NULL,
	sort_order   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS product_variants (
	id                 TEXT PRIMARY KEY,
	product_id         TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	attribute_value_id TEXT NOT NULL REFERENCES product_attribute_values(id) ON DELETE CASCADE,
	price              NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
	stock_quantity     INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
	is_available       BOOLEAN NOT NULL DEFAULT TRUE,
	UNIQUE (product_id, attribute_value_id)
);

CREATE INDEX IF NOT EXISTS idx_product_variants_product_id ON product_variants(product_id);

CREATE TABLE IF NOT EXISTS coupons (
	id               UUID PRIMARY KEY,
	code             TEXT NOT NULL UNIQUE CHECK (code = UPPER(code)),
	discount_type    TEXT NOT NULL CHECK (discount_type IN ('percentage', 'fixed')),
	discount_value   NUMERIC(12, 2) NOT NULL CHECK (discount_value > 0),
	min_order_amount NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (min_order_amount >= 0),
	max_uses         INTEGER CHECK (max_uses >= 1),
	used_count       INTEGER NOT NULL DEFAULT 0 CHECK (used_count >= 0),
	is_active        BOOLEAN NOT NULL DEFAULT TRUE,
	expires_at       TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id              UUID PRIMARY KEY,
	order_id        TEXT NOT NULL,
	customer_name   TEXT NOT NULL,
	customer_phone  TEXT NOT NULL,
	customer_email  TEXT,
	address         TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'confirmed', 'packed', 'shipped', 'delivered', 'cancelled')),
	payment_method  TEXT NOT NULL CHECK (payment_method IN ('online', 'cod')),
	subtotal        NUMERIC(12, 2) NOT NULL CHECK (subtotal >= 0),
	coupon_code     TEXT,
	coupon_discount NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (coupon_discount >= 0),
	total           NUMERIC(12, 2) NOT NULL CHECK (total >= 0),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT orders_order_id_key UNIQUE (order_id)
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
	id            UUID PRIMARY KEY,
	order_id      UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id    TEXT NOT NULL,
	product_name  TEXT NOT NULL,
	product_price NUMERIC(12, 2) NOT NULL CHECK (product_price >= 0),
	quantity      INTEGER NOT NULL CHECK (quantity > 0),
	variant_info  JSONB,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

CREATE TABLE IF NOT EXISTS order_messages (
	id         UUID PRIMARY KEY,
	order_id   UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	message    TEXT NOT NULL,
	is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_order_messages_order_id ON order_messages(order_id, created_at);
`

// Migrate applies Schema. It is safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		logger.Error().Err(err).Msg("failed to apply database schema")
		return fmt.Errorf("failed to apply database schema: %w", err)
	}

	logger.Info().Msg("database schema is up to date")
	return nil
}
