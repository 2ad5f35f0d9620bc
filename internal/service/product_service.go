package service

import (
	"context"
	"fmt"

	"royal-kart/internal/model"
	"royal-kart/internal/repository"
	"royal-kart/internal/variant"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves products with pagination, limited to one category when
// categoryID is set.
func (s *productService) GetAll(ctx context.Context, categoryID string, limit, offset int) ([]model.Product, error) {
	limit, offset = clampPage(limit, offset, 10)

	products, err := s.productRepo.GetAll(ctx, categoryID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Str("category_id", categoryID).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Str("category_id", categoryID).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// GetDetail resolves the product page for the given selections.
func (s *productService) GetDetail(ctx context.Context, id string, selections []model.Selection) (*ProductDetail, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	options, err := s.productRepo.ListVariantOptions(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to list variant options")
		return nil, fmt.Errorf("failed to get product variants: %w", err)
	}

	dims := variant.Dimensions(options)
	if dims == nil {
		dims = []variant.Dimension{}
	}

	return &ProductDetail{
		Product:    *product,
		Dimensions: dims,
		Resolution: variant.Resolve(*product, options, selections),
	}, nil
}

// clampPage applies the default page size and the upper bound of 100.
func clampPage(limit, offset, fallback int) (int, int) {
	if limit <= 0 {
		limit = fallback
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
