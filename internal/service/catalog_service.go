package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"royal-kart/internal/model"
	"royal-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// catalogService implements CatalogService.
type catalogService struct {
	catalogRepo repository.CatalogRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalogue admin service.
func NewCatalogService(catalogRepo repository.CatalogRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// ListCategories returns the storefront categories; admins also see the
// inactive ones.
func (s *catalogService) ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	categories, err := s.catalogRepo.ListCategories(ctx, !includeInactive)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, model.MissingField("name")
	}

	now := time.Now().UTC()
	c := &model.Category{
		ID:        strings.TrimSpace(req.ID),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	applyCategory(c, req)

	if err := s.catalogRepo.CreateCategory(ctx, c); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Str("category_id", c.ID).Msg("category created")
	return c, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, req *model.CategoryRequest) (*model.Category, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, model.MissingField("name")
	}

	c, err := s.catalogRepo.GetCategory(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id).Msg("failed to get category")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if c == nil {
		return nil, model.ErrCategoryNotFound
	}

	applyCategory(c, req)
	c.UpdatedAt = time.Now().UTC()

	if err := s.catalogRepo.UpdateCategory(ctx, c); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info().Str("category_id", c.ID).Msg("category updated")
	return c, nil
}

// DeleteCategory removes a category. Its products stay listed without one.
func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeleteCategory(ctx, id); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.logger.Info().Str("category_id", id).Msg("category deleted")
	return nil
}

func applyCategory(c *model.Category, req *model.CategoryRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Description = req.Description
	c.SortOrder = req.SortOrder
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

// validateProduct checks the price, discount and stock rules.
func validateProduct(req *model.ProductRequest) error {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return model.MissingField("name")
	}
	if req.Price.IsNegative() {
		return model.InvalidProduct("Price cannot be negative")
	}
	if req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(hundred) {
		return model.InvalidProduct("Discount percentage must be between 0 and 100")
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return model.InvalidProduct("Stock quantity cannot be negative")
	}
	if req.StockStatus != "" && !req.StockStatus.Valid() {
		return model.InvalidProduct("Stock status must be in_stock, low_stock or sold_out")
	}
	return nil
}

// applyProduct copies the request onto p. The first image doubles as the
// listing image.
func applyProduct(p *model.Product, req *model.ProductRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = req.Price
	p.DiscountPercentage = req.DiscountPercentage
	p.StockQuantity = req.StockQuantity
	p.StockStatus = req.StockStatus
	if p.StockStatus == "" {
		p.StockStatus = model.StockInStock
	}
	p.CashOnDelivery = req.CashOnDelivery
	p.Images = append([]string{}, req.Images...)
	p.ImageURL = ""
	if len(p.Images) > 0 {
		p.ImageURL = p.Images[0]
	}
	p.CategoryID = req.CategoryID
	if p.CategoryID != nil && *p.CategoryID == "" {
		p.CategoryID = nil
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &model.Product{
		ID:        strings.TrimSpace(req.ID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	applyProduct(p, req)

	if err := s.catalogRepo.CreateProduct(ctx, p); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product created")
	return p, nil
}

// UpdateProduct replaces the product's fields. The id and creation time are kept.
func (s *catalogService) UpdateProduct(ctx context.Context, id string, req *model.ProductRequest) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	p, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	applyProduct(p, req)
	p.UpdatedAt = time.Now().UTC()

	if err := s.catalogRepo.UpdateProduct(ctx, p); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product updated")
	return p, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeleteProduct(ctx, id); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *catalogService) findProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}
	return p, nil
}

// findVariant returns the variant only when it belongs to productID.
func (s *catalogService) findVariant(ctx context.Context, productID, variantID string) (*model.Variant, error) {
	v, err := s.catalogRepo.GetVariant(ctx, variantID)
	if err != nil {
		s.logger.Error().Err(err).Str("variant_id", variantID).Msg("failed to get variant")
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	if v == nil || v.ProductID != productID {
		return nil, model.ErrVariantNotFound
	}
	return v, nil
}

func validateVariant(req *model.VariantRequest) error {
	if req.Price != nil && req.Price.IsNegative() {
		return model.InvalidProduct("Price cannot be negative")
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return model.InvalidProduct("Stock quantity cannot be negative")
	}
	return nil
}

func applyVariant(v *model.Variant, req *model.VariantRequest) {
	if req.Price != nil {
		v.Price = *req.Price
	}
	if req.StockQuantity != nil {
		v.StockQuantity = *req.StockQuantity
	}
	if req.IsAvailable != nil {
		v.IsAvailable = *req.IsAvailable
	}
}

func (s *catalogService) CreateVariant(ctx context.Context, productID string, req *model.VariantRequest) (*model.Variant, error) {
	if req == nil || strings.TrimSpace(req.AttributeValueID) == "" {
		return nil, model.MissingField("attributeValueId")
	}
	if err := validateVariant(req); err != nil {
		return nil, err
	}

	p, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	v := &model.Variant{
		ID:               uuid.NewString(),
		ProductID:        p.ID,
		AttributeValueID: strings.TrimSpace(req.AttributeValueID),
		Price:            p.Price,
		IsAvailable:      true,
	}
	applyVariant(v, req)

	if err := s.catalogRepo.CreateVariant(ctx, v); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create variant: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Str("variant_id", v.ID).Msg("variant created")
	return v, nil
}

// UpdateVariant changes the fields present in req. The attribute value a
// variant is keyed by never changes.
func (s *catalogService) UpdateVariant(ctx context.Context, productID, variantID string, req *model.VariantRequest) (*model.Variant, error) {
	if req == nil {
		return nil, model.MissingField("price")
	}
	if err := validateVariant(req); err != nil {
		return nil, err
	}

	v, err := s.findVariant(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}
	applyVariant(v, req)

	if err := s.catalogRepo.UpdateVariant(ctx, v); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update variant: %w", err)
	}

	s.logger.Info().Str("product_id", productID).Str("variant_id", v.ID).Msg("variant updated")
	return v, nil
}

func (s *catalogService) DeleteVariant(ctx context.Context, productID, variantID string) error {
	if _, err := s.findVariant(ctx, productID, variantID); err != nil {
		return err
	}

	if err := s.catalogRepo.DeleteVariant(ctx, variantID); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to delete variant: %w", err)
	}

	s.logger.Info().Str("product_id", productID).Str("variant_id", variantID).Msg("variant deleted")
	return nil
}
