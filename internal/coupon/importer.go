package coupon

import (
	"context"
	"fmt"
	"sync"

	"royal-kart/internal/model"

	"github.com/rs/zerolog"
)

// Upserter stores a coupon by code, keeping the existing usage count.
type Upserter interface {
	Upsert(ctx context.Context, coupon *model.Coupon) error
}

// Importer loads seed files and writes their coupons to the store.
type Importer struct {
	loader Loader
	store  Upserter
	logger zerolog.Logger
}

// NewImporter creates a seed importer.
func NewImporter(loader Loader, store Upserter, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// Import reads every path concurrently, then upserts the coupons in path
// order so that a later file wins for a repeated code. Nothing is written if
// any file fails to load. It returns the number of coupons written.
func (i *Importer) Import(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	i.logger.Info().Int("file_count", len(paths)).Msg("importing coupon seed files")

	type loadResult struct {
		coupons []model.Coupon
		err     error
	}

	results := make([]loadResult, len(paths))
	var wg sync.WaitGroup
	for idx, path := range paths {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			coupons, err := i.loader.Load(ctx, path)
			results[idx] = loadResult{coupons: coupons, err: err}
		}(idx, path)
	}
	wg.Wait()

	for idx, res := range results {
		if res.err != nil {
			i.logger.Error().Err(res.err).Str("file", paths[idx]).Msg("failed to load coupon seed file")
			return 0, fmt.Errorf("failed to load coupon seed file %s: %w", paths[idx], res.err)
		}
	}

	written := 0
	for idx, res := range results {
		for n := range res.coupons {
			c := &res.coupons[n]
			if err := i.store.Upsert(ctx, c); err != nil {
				i.logger.Error().Err(err).Str("file", paths[idx]).Str("coupon_code", c.Code).Msg("failed to upsert coupon")
				return written, fmt.Errorf("failed to upsert coupon %s: %w", c.Code, err)
			}
			written++
		}
	}

	i.logger.Info().Int("coupons_written", written).Msg("coupon seed import complete")
	return written, nil
}
