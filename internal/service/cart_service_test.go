package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"royal-kart/internal/cart"
	"royal-kart/internal/events"
	"royal-kart/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func cartFixture() (*model.Product, []model.VariantOption) {
	product := &model.Product{
		ID:                 "P100",
		Name:               "Silk Saree",
		Price:              money("2000"),
		DiscountPercentage: money("10"),
		StockQuantity:      intPtr(5),
		StockStatus:        model.StockInStock,
		CashOnDelivery:     true,
		Images:             []string{"saree.jpg"},
	}
	options := []model.VariantOption{
		{VariantID: "V-RED", ProductID: "P100", AttributeID: "colour", AttributeName: "Colour", ValueID: "red", Value: "Red", Price: money("2500"), StockQuantity: 3, IsAvailable: true},
		{VariantID: "V-BLUE", ProductID: "P100", AttributeID: "colour", AttributeName: "Colour", ValueID: "blue", Value: "Blue", ValueOrder: 1, Price: money("2600"), StockQuantity: 2, IsAvailable: false},
	}
	return product, options
}

func newCartServiceForTest(t *testing.T, product *model.Product, options []model.VariantOption) (CartService, cart.Store, *MockProductRepository) {
	t.Helper()
	repo := new(MockProductRepository)
	if product != nil {
		repo.On("GetByID", mock.Anything, product.ID).Return(product, nil).Maybe()
		repo.On("ListVariantOptions", mock.Anything, product.ID).Return(options, nil).Maybe()
	}
	store := cart.NewMemoryStore(time.Hour)
	return NewCartService(store, repo, events.NewNopPublisher(), 99, zerolog.Nop()), store, repo
}

func TestCartService_Add(t *testing.T) {
	ctx := context.Background()
	product, options := cartFixture()

	t.Run("Quick add uses the base price", func(t *testing.T) {
		svc, _, _ := newCartServiceForTest(t, product, []model.VariantOption{})

		view, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100"})

		require.NoError(t, err)
		require.Len(t, view.Lines, 1)
		line := view.Lines[0]
		assert.Equal(t, 1, line.Quantity)
		assert.Nil(t, line.Variant)
		assert.True(t, money("2000").Equal(line.UnitPrice))
		assert.True(t, money("10").Equal(line.DiscountPercentage))
		assert.Equal(t, "saree.jpg", line.Image)
		assert.True(t, money("1800").Equal(view.Subtotal))
	})

	t.Run("Variant selection replaces price and drops discount", func(t *testing.T) {
		svc, _, _ := newCartServiceForTest(t, product, options)

		view, err := svc.Add(ctx, "s1", &model.AddToCartRequest{
			ProductID:  "P100",
			Selections: []model.Selection{{AttributeID: "colour", ValueID: "red"}},
			Quantity:   2,
		})

		require.NoError(t, err)
		require.Len(t, view.Lines, 1)
		line := view.Lines[0]
		require.NotNil(t, line.Variant)
		assert.Equal(t, "V-RED", line.Variant.VariantID)
		assert.Equal(t, "Colour", line.Variant.AttributeName)
		assert.Equal(t, "Red", line.Variant.ValueName)
		assert.True(t, money("2500").Equal(line.UnitPrice))
		assert.True(t, line.DiscountPercentage.IsZero())
		assert.True(t, money("5000").Equal(view.Subtotal))
	})

	t.Run("Repeated adds sum into one line", func(t *testing.T) {
		tests := []struct {
			name      string
			stock     *int
			first     int
			second    int
			wantQty   int
			wantError bool
		}{
			{"Within stock", intPtr(5), 2, 3, 5, false},
			{"Past stock is refused", intPtr(5), 3, 3, 3, true},
			{"No stock figure sums past the per-add cap", nil, 60, 60, 120, false},
			{"Oversized first add is capped by stock", intPtr(5), 9, 0, 5, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := *product
				p.StockQuantity = tt.stock
				svc, _, _ := newCartServiceForTest(t, &p, []model.VariantOption{})

				_, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100", Quantity: tt.first})
				require.NoError(t, err)
				if tt.second > 0 {
					_, err = svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100", Quantity: tt.second})
				}

				if tt.wantError {
					assert.ErrorIs(t, err, model.InsufficientStock(*tt.stock))
				} else {
					require.NoError(t, err)
				}
				view, err := svc.Get(ctx, "s1")
				require.NoError(t, err)
				require.Len(t, view.Lines, 1)
				assert.Equal(t, tt.wantQty, view.Lines[0].Quantity)
			})
		}
	})

	t.Run("Variant stock bounds the merged line", func(t *testing.T) {
		svc, _, _ := newCartServiceForTest(t, product, options)
		req := &model.AddToCartRequest{
			ProductID:  "P100",
			Selections: []model.Selection{{AttributeID: "colour", ValueID: "red"}},
			Quantity:   2,
		}

		_, err := svc.Add(ctx, "s1", req)
		require.NoError(t, err)
		_, err = svc.Add(ctx, "s1", req)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeInsufficientStock, domainErr.Code)
		assert.Contains(t, domainErr.Message, "3")

		view, err := svc.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 2, view.ItemCount)
	})

	t.Run("Base and variant lines stay separate", func(t *testing.T) {
		svc, _, _ := newCartServiceForTest(t, product, options)

		_, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100", Selections: []model.Selection{{AttributeID: "colour", ValueID: "red"}}})
		require.NoError(t, err)

		// Stale selection falls back to the base product.
		view, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100", Selections: []model.Selection{{AttributeID: "colour", ValueID: "green"}}})
		require.NoError(t, err)
		assert.Len(t, view.Lines, 2)
	})

	t.Run("Unavailable variant is rejected", func(t *testing.T) {
		svc, store, _ := newCartServiceForTest(t, product, options)

		_, err := svc.Add(ctx, "s1", &model.AddToCartRequest{
			ProductID:  "P100",
			Selections: []model.Selection{{AttributeID: "colour", ValueID: "blue"}},
		})

		assert.ErrorIs(t, err, model.ErrVariantUnavailable)
		c, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Sold out product is rejected", func(t *testing.T) {
		soldOut := *product
		soldOut.StockStatus = model.StockSoldOut
		svc, _, _ := newCartServiceForTest(t, &soldOut, []model.VariantOption{})

		_, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100"})

		assert.ErrorIs(t, err, model.ErrOutOfStock)
	})

	t.Run("Quantity ceiling falls back to the configured maximum", func(t *testing.T) {
		unlimited := *product
		unlimited.StockQuantity = nil
		svc, _, _ := newCartServiceForTest(t, &unlimited, []model.VariantOption{})

		view, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100", Quantity: 500})

		require.NoError(t, err)
		assert.Equal(t, 99, view.Lines[0].Quantity)
	})

	t.Run("Validation", func(t *testing.T) {
		svc, _, repo := newCartServiceForTest(t, nil, nil)
		repo.On("GetByID", mock.Anything, "P404").Return(nil, nil)

		_, err := svc.Add(ctx, "s1", &model.AddToCartRequest{})
		assert.ErrorIs(t, err, model.MissingField("productId"))

		_, err = svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100", Quantity: -1})
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)

		_, err = svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P404"})
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Repository failure is wrapped", func(t *testing.T) {
		svc, _, repo := newCartServiceForTest(t, nil, nil)
		repo.On("GetByID", mock.Anything, "P100").Return(nil, errors.New("connection reset"))

		_, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100"})

		require.Error(t, err)
		assert.False(t, isDomainError(err))
		assert.Contains(t, err.Error(), "failed to get product")
	})
}

func TestCartService_SetQuantity(t *testing.T) {
	ctx := context.Background()
	product, options := cartFixture()
	red := model.LineKey{ProductID: "P100", VariantID: "V-RED"}

	setup := func(t *testing.T) CartService {
		svc, _, _ := newCartServiceForTest(t, product, options)
		_, err := svc.Add(ctx, "s1", &model.AddToCartRequest{
			ProductID:  "P100",
			Selections: []model.Selection{{AttributeID: "colour", ValueID: "red"}},
		})
		require.NoError(t, err)
		return svc
	}

	tests := []struct {
		name     string
		key      model.LineKey
		quantity int
		want     int
		wantErr  error
	}{
		{"Within stock", red, 2, 2, nil},
		{"Clamped to variant stock", red, 10, 3, nil},
		{"Zero is ignored", red, 0, 1, nil},
		{"Negative is ignored", red, -4, 1, nil},
		{"Unknown line", model.LineKey{ProductID: "P100"}, 2, 0, model.ErrCartLineNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setup(t)

			view, err := svc.SetQuantity(ctx, "s1", tt.key, tt.quantity)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, view.Lines, 1)
			assert.Equal(t, tt.want, view.Lines[0].Quantity)
		})
	}
}

func TestCartService_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	product, _ := cartFixture()
	svc, _, _ := newCartServiceForTest(t, product, []model.VariantOption{})

	_, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100"})
	require.NoError(t, err)

	view, err := svc.Remove(ctx, "s1", model.LineKey{ProductID: "P100"})
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	_, err = svc.Remove(ctx, "s1", model.LineKey{ProductID: "P100"})
	assert.ErrorIs(t, err, model.ErrCartLineNotFound)

	_, err = svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100", Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "s1"))

	view, err = svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.ItemCount)
}

func TestCartService_PublishesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	product, _ := cartFixture()
	repo := new(MockProductRepository)
	repo.On("GetByID", mock.Anything, "P100").Return(product, nil)
	repo.On("ListVariantOptions", mock.Anything, "P100").Return([]model.VariantOption{}, nil)

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, ofType(events.CartUpdated)).Return(nil)

	svc := NewCartService(cart.NewMemoryStore(time.Hour), repo, publisher, 99, zerolog.Nop())

	_, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100", Quantity: 5})
	require.NoError(t, err)
	publisher.AssertNumberOfCalls(t, "Publish", 1)

	// Already at the stock figure, so the add is refused and nothing changes.
	_, err = svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100"})
	assert.ErrorIs(t, err, model.InsufficientStock(5))
	publisher.AssertNumberOfCalls(t, "Publish", 1)

	_, err = svc.SetQuantity(ctx, "s1", model.LineKey{ProductID: "P100"}, 2)
	require.NoError(t, err)
	publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestCartService_PublishFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	product, _ := cartFixture()
	repo := new(MockProductRepository)
	repo.On("GetByID", mock.Anything, "P100").Return(product, nil)
	repo.On("ListVariantOptions", mock.Anything, "P100").Return([]model.VariantOption{}, nil)

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	svc := NewCartService(cart.NewMemoryStore(time.Hour), repo, publisher, 99, zerolog.Nop())

	view, err := svc.Add(ctx, "s1", &model.AddToCartRequest{ProductID: "P100"})

	require.NoError(t, err)
	assert.Equal(t, 1, view.ItemCount)
}
