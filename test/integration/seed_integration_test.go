package integration

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"royal-kart/internal/coupon"
	"royal-kart/internal/model"
	"royal-kart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, dir, name, doc string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return path
}

func TestCouponSeedImport_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	CleanupDB(t, testDB.Pool)
	ctx := context.Background()
	logger := zerolog.Nop()

	dir := t.TempDir()
	festive := writeSeed(t, dir, "festive.yaml.gz", `
coupons:
  - code: welcome10
    discount_type: percentage
    discount_value: "10"
  - code: FIRST100
    discount_type: fixed
    discount_value: "100"
    max_uses: 100
`)
	launch := writeSeed(t, dir, "launch.yaml.gz", `
coupons:
  - code: WELCOME10
    discount_type: percentage
    discount_value: "10"
    min_order_amount: "499"
`)

	couponRepo := repository.NewCouponRepository(testDB.Pool, logger)
	importer := coupon.NewImporter(coupon.NewFileLoader(logger), couponRepo, logger)

	n, err := importer.Import(ctx, []string{festive, launch})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	welcome, err := couponRepo.GetActiveByCode(ctx, "WELCOME10")
	require.NoError(t, err)
	require.NotNil(t, welcome)
	assert.True(t, welcome.MinOrderAmount.Equal(money("499")), "later file wins")

	// The validator reads what the importer wrote.
	validator := coupon.NewValidator(couponRepo, logger)
	_, err = validator.Apply(ctx, "welcome10", money("300"))
	assert.ErrorIs(t, err, model.ErrCouponMinimumNotMet)

	app, err := validator.Apply(ctx, "first100", money("300"))
	require.NoError(t, err)
	assert.True(t, money("100").Equal(app.Discount))

	// Redemptions survive a re-import.
	_, err = testDB.Pool.Exec(ctx, "UPDATE coupons SET used_count = 7 WHERE code = 'FIRST100'")
	require.NoError(t, err)

	_, err = importer.Import(ctx, []string{festive})
	require.NoError(t, err)

	first, err := couponRepo.GetActiveByCode(ctx, "FIRST100")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 7, first.UsedCount)
}
