package integration

import (
	"net/http"
	"testing"

	"royal-kart/internal/model"
	"royal-kart/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogAdmin_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	CleanupDB(t, testDB.Pool)
	SeedCatalogue(t, testDB.Pool)
	server := SetupTestServer(t, testDB, nil)

	s := newShopper(t, server)
	admin := newShopper(t, server)
	admin.apiKey = testAPIKey

	t.Run("writes need the API key", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/admin/products", model.ProductRequest{Name: "Stole", Price: money("300")})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	w := admin.do(http.MethodPost, "/api/admin/categories", model.CategoryRequest{ID: "stoles", Name: "Stoles", SortOrder: 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	category := "stoles"
	w = admin.do(http.MethodPost, "/api/admin/products", model.ProductRequest{
		ID:             "P010",
		Name:           "Pashmina Stole",
		Price:          money("1800"),
		CashOnDelivery: true,
		Images:         []string{"stole.jpg"},
		CategoryID:     &category,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Product](t, w)
	assert.Equal(t, "stole.jpg", created.ImageURL)
	assert.Equal(t, model.StockInStock, created.StockStatus)

	t.Run("category filter", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/products?category=stoles", nil)
		require.Equal(t, http.StatusOK, w.Code)

		products := decode[[]model.Product](t, w)
		require.Len(t, products, 1)
		assert.Equal(t, "P010", products[0].ID)

		w = s.do(http.MethodGet, "/api/products", nil)
		assert.Len(t, decode[[]model.Product](t, w), 4)
	})

	t.Run("public category list", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/categories", nil)
		require.Equal(t, http.StatusOK, w.Code)

		categories := decode[[]model.Category](t, w)
		require.Len(t, categories, 1)
		assert.Equal(t, "Stoles", categories[0].Name)
	})

	t.Run("duplicate product id", func(t *testing.T) {
		w := admin.do(http.MethodPost, "/api/admin/products", model.ProductRequest{ID: "P010", Name: "Copy", Price: money("1")})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, model.ErrCodeDuplicateProduct, errorCode(t, w))
	})

	t.Run("unknown category", func(t *testing.T) {
		lamps := "lamps"
		w := admin.do(http.MethodPost, "/api/admin/products", model.ProductRequest{Name: "Lamp", Price: money("1"), CategoryID: &lamps})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeCategoryNotFound, errorCode(t, w))
	})

	var variantID string
	t.Run("variant appears on the product page", func(t *testing.T) {
		stock := 2
		w := admin.do(http.MethodPost, "/api/admin/products/P010/variants", model.VariantRequest{
			AttributeValueID: "red",
			StockQuantity:    &stock,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		v := decode[model.Variant](t, w)
		variantID = v.ID
		assert.True(t, money("1800").Equal(v.Price))

		w = s.do(http.MethodGet, "/api/products/P010", nil)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[service.ProductDetail](t, w)
		require.Len(t, detail.Dimensions, 1)
		require.NotNil(t, detail.Resolution.Variant)
		assert.Equal(t, variantID, detail.Resolution.Variant.VariantID)
	})

	t.Run("duplicate variant", func(t *testing.T) {
		w := admin.do(http.MethodPost, "/api/admin/products/P010/variants", model.VariantRequest{AttributeValueID: "red"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("variant of another product", func(t *testing.T) {
		w := admin.do(http.MethodDelete, "/api/admin/products/"+sareeID+"/variants/"+variantID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeVariantNotFound, errorCode(t, w))
	})

	t.Run("deleting the category keeps the product", func(t *testing.T) {
		w := admin.do(http.MethodDelete, "/api/admin/categories/stoles", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(http.MethodGet, "/api/products?category=stoles", nil)
		assert.Empty(t, decode[[]model.Product](t, w))

		w = s.do(http.MethodGet, "/api/products/P010", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete product", func(t *testing.T) {
		w := admin.do(http.MethodDelete, "/api/admin/products/P010", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(http.MethodGet, "/api/products/P010", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
