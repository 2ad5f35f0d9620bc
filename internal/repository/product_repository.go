package repository

import (
	"context"
	"errors"
	"fmt"

	"royal-kart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `
	id, name, description, price, discount_percentage, stock_quantity, stock_status,
	cash_on_delivery, image_url, images, category_id, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.DiscountPercentage,
		&p.StockQuantity,
		&p.StockStatus,
		&p.CashOnDelivery,
		&p.ImageURL,
		&p.Images,
		&p.CategoryID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// GetAll retrieves products with pagination support, optionally within one category.
func (r *productRepository) GetAll(ctx context.Context, categoryID string, limit, offset int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE $1 = '' OR category_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, categoryID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Str("category_id", categoryID).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p model.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// ListVariantOptions returns the product's variants with their attribute data.
func (r *productRepository) ListVariantOptions(ctx context.Context, productID string) ([]model.VariantOption, error) {
	query := `
		SELECT v.id, v.product_id, a.id, a.name, a.sort_order,
		       av.id, av.value, av.sort_order, v.price, v.stock_quantity, v.is_available
		FROM product_variants v
		JOIN product_attribute_values av ON av.id = v.attribute_value_id
		JOIN product_attributes a ON a.id = av.attribute_id
		WHERE v.product_id = $1
		ORDER BY a.sort_order, a.name, av.sort_order, av.value
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to query product variants")
		return nil, fmt.Errorf("failed to query product variants: %w", err)
	}
	defer rows.Close()

	var options []model.VariantOption
	for rows.Next() {
		var o model.VariantOption
		err := rows.Scan(
			&o.VariantID,
			&o.ProductID,
			&o.AttributeID,
			&o.AttributeName,
			&o.AttributeOrder,
			&o.ValueID,
			&o.Value,
			&o.ValueOrder,
			&o.Price,
			&o.StockQuantity,
			&o.IsAvailable,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		options = append(options, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return options, nil
}
