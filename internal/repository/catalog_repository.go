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

const (
	productCategoryConstraint = "products_category_id_fkey"
	productPrimaryKey         = "products_pkey"
	variantValueConstraint    = "product_variants_attribute_value_id_fkey"
	variantProductConstraint  = "product_variants_product_id_fkey"
	variantUniqueConstraint   = "product_variants_product_id_attribute_value_id_key"
)

// catalogRepository implements the CatalogRepository interface using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalogue admin repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

const categoryColumns = `id, name, description, sort_order, is_active, created_at, updated_at`

func scanCategory(row pgx.Row, c *model.Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

func (r *catalogRepository) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_active OR NOT $1
		ORDER BY sort_order, name
	`

	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := scanCategory(rows, &c); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *catalogRepository) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var c model.Category
	if err := scanCategory(r.pool.QueryRow(ctx, query, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("category_id", id).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}

func (r *catalogRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	query := `
		INSERT INTO categories (id, name, description, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Description, c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", c.ID).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *catalogRepository) UpdateCategory(ctx context.Context, c *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, sort_order = $4, is_active = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Description, c.SortOrder, c.IsActive, c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", c.ID).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

// productWriteError translates constraint failures on the products table.
func (r *catalogRepository) productWriteError(err error, p *model.Product, action string) error {
	switch {
	case isUniqueViolation(err, productPrimaryKey):
		return model.ErrDuplicateProduct
	case isForeignKeyViolation(err, productCategoryConstraint):
		return model.ErrCategoryNotFound
	}
	r.logger.Error().Err(err).Str("product_id", p.ID).Msgf("failed to %s product", action)
	return fmt.Errorf("failed to %s product: %w", action, err)
}

func (r *catalogRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, discount_percentage, stock_quantity,
		                      stock_status, cash_on_delivery, image_url, images, category_id,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.DiscountPercentage, p.StockQuantity,
		p.StockStatus, p.CashOnDelivery, p.ImageURL, append([]string{}, p.Images...), p.CategoryID,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return r.productWriteError(err, p, "create")
	}
	return nil
}

func (r *catalogRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, discount_percentage = $5, stock_quantity = $6,
		    stock_status = $7, cash_on_delivery = $8, image_url = $9, images = $10, category_id = $11,
		    updated_at = $12
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.DiscountPercentage, p.StockQuantity,
		p.StockStatus, p.CashOnDelivery, p.ImageURL, append([]string{}, p.Images...), p.CategoryID,
		p.UpdatedAt,
	)
	if err != nil {
		return r.productWriteError(err, p, "update")
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *catalogRepository) GetVariant(ctx context.Context, id string) (*model.Variant, error) {
	query := `
		SELECT id, product_id, attribute_value_id, price, stock_quantity, is_available
		FROM product_variants
		WHERE id = $1
	`

	var v model.Variant
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.ProductID, &v.AttributeValueID, &v.Price, &v.StockQuantity, &v.IsAvailable,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("variant_id", id).Msg("failed to query variant")
		return nil, fmt.Errorf("failed to query variant: %w", err)
	}
	return &v, nil
}

func (r *catalogRepository) CreateVariant(ctx context.Context, v *model.Variant) error {
	query := `
		INSERT INTO product_variants (id, product_id, attribute_value_id, price, stock_quantity, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, v.ID, v.ProductID, v.AttributeValueID, v.Price, v.StockQuantity, v.IsAvailable)
	if err != nil {
		switch {
		case isUniqueViolation(err, variantUniqueConstraint):
			return model.ErrDuplicateVariant
		case isForeignKeyViolation(err, variantValueConstraint):
			return model.InvalidParameter("attributeValueId")
		case isForeignKeyViolation(err, variantProductConstraint):
			return model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Str("product_id", v.ProductID).Msg("failed to create variant")
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

func (r *catalogRepository) UpdateVariant(ctx context.Context, v *model.Variant) error {
	query := `
		UPDATE product_variants
		SET price = $2, stock_quantity = $3, is_available = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, v.ID, v.Price, v.StockQuantity, v.IsAvailable)
	if err != nil {
		r.logger.Error().Err(err).Str("variant_id", v.ID).Msg("failed to update variant")
		return fmt.Errorf("failed to update variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVariantNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteVariant(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("variant_id", id).Msg("failed to delete variant")
		return fmt.Errorf("failed to delete variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVariantNotFound
	}
	return nil
}
