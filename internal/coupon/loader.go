package coupon

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"royal-kart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// seedFile is the document layout of a coupon seed file.
type seedFile struct {
	Coupons []seedRecord `yaml:"coupons"`
}

// seedRecord keeps amounts and dates as strings so that they are parsed
// with the same rules as the admin API.
type seedRecord struct {
	Code           string `yaml:"code"`
	DiscountType   string `yaml:"discount_type"`
	DiscountValue  string `yaml:"discount_value"`
	MinOrderAmount string `yaml:"min_order_amount"`
	MaxUses        *int   `yaml:"max_uses"`
	Active         *bool  `yaml:"active"`
	ExpiresAt      string `yaml:"expires_at"`
}

func (r seedRecord) toCoupon(now time.Time) (model.Coupon, error) {
	c := model.Coupon{
		ID:             uuid.New(),
		Code:           model.NormaliseCouponCode(r.Code),
		DiscountType:   model.DiscountType(r.DiscountType),
		MinOrderAmount: decimal.Zero,
		MaxUses:        r.MaxUses,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if r.Active != nil {
		c.IsActive = *r.Active
	}

	value, err := decimal.NewFromString(r.DiscountValue)
	if err != nil {
		return c, fmt.Errorf("invalid discount_value %q: %w", r.DiscountValue, err)
	}
	c.DiscountValue = value

	if r.MinOrderAmount != "" {
		minimum, err := decimal.NewFromString(r.MinOrderAmount)
		if err != nil {
			return c, fmt.Errorf("invalid min_order_amount %q: %w", r.MinOrderAmount, err)
		}
		c.MinOrderAmount = minimum
	}

	if r.ExpiresAt != "" {
		expires, err := time.Parse(time.RFC3339, r.ExpiresAt)
		if err != nil {
			return c, fmt.Errorf("invalid expires_at %q: %w", r.ExpiresAt, err)
		}
		c.ExpiresAt = &expires
	}

	if err := ValidateRules(c); err != nil {
		return c, err
	}
	return c, nil
}

// decodeSeed reads a gzipped YAML seed document from r.
func decodeSeed(r io.Reader, source string) ([]model.Coupon, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	var doc seedFile
	if err := yaml.NewDecoder(gzipReader).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode coupon seed %s: %w", source, err)
	}

	now := time.Now().UTC()
	coupons := make([]model.Coupon, 0, len(doc.Coupons))
	for i, rec := range doc.Coupons {
		c, err := rec.toCoupon(now)
		if err != nil {
			return nil, fmt.Errorf("coupon %d (%q) in %s: %w", i+1, rec.Code, source, err)
		}
		coupons = append(coupons, c)
	}
	return coupons, nil
}

// fileLoader implements Loader for reading seed files from local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped YAML seed file from disk.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.Coupon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Info().Str("file", filePath).Msg("loading coupon seed file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon seed file")
		return nil, fmt.Errorf("failed to open coupon seed file %s: %w", filePath, err)
	}
	defer file.Close()

	coupons, err := decodeSeed(file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read coupon seed file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("coupons_loaded", len(coupons)).
		Msg("coupon seed file loaded")

	return coupons, nil
}
