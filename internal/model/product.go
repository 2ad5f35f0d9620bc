package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus is the coarse availability label shown on listings.
type StockStatus string

const (
	StockInStock  StockStatus = "in_stock"
	StockLowStock StockStatus = "low_stock"
	StockSoldOut  StockStatus = "sold_out"
)

// Product represents an item in the storefront catalogue.
type Product struct {
	ID                 string          `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Description        string          `json:"description,omitempty" db:"description"`
	Price              decimal.Decimal `json:"price" db:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage" db:"discount_percentage"`
	StockQuantity      *int            `json:"stockQuantity,omitempty" db:"stock_quantity"`
	StockStatus        StockStatus     `json:"stockStatus" db:"stock_status"`
	CashOnDelivery     bool            `json:"cashOnDelivery" db:"cash_on_delivery"`
	ImageURL           string          `json:"imageUrl,omitempty" db:"image_url"`
	Images             []string        `json:"images,omitempty" db:"images"`
	CategoryID         *string         `json:"categoryId,omitempty" db:"category_id"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`
}

// SoldOut reports whether the product itself cannot be bought.
func (p *Product) SoldOut() bool {
	if p.StockStatus == StockSoldOut {
		return true
	}
	return p.StockQuantity != nil && *p.StockQuantity == 0
}

// PrimaryImage returns the image used for cart lines.
func (p *Product) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.ImageURL
}

// VariantOption is one variant row joined with the attribute value it is keyed
// by and that value's attribute.
type VariantOption struct {
	VariantID      string          `json:"variantId" db:"variant_id"`
	ProductID      string          `json:"productId" db:"product_id"`
	AttributeID    string          `json:"attributeId" db:"attribute_id"`
	AttributeName  string          `json:"attributeName" db:"attribute_name"`
	AttributeOrder int             `json:"-" db:"attribute_sort_order"`
	ValueID        string          `json:"valueId" db:"attribute_value_id"`
	Value          string          `json:"value" db:"value"`
	ValueOrder     int             `json:"-" db:"value_sort_order"`
	Price          decimal.Decimal `json:"price" db:"price"`
	StockQuantity  int             `json:"stockQuantity" db:"stock_quantity"`
	IsAvailable    bool            `json:"isAvailable" db:"is_available"`
}

// Valid reports whether s is a known stock status.
func (s StockStatus) Valid() bool {
	return s == StockInStock || s == StockLowStock || s == StockSoldOut
}

// Category groups products on the storefront listing.
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	SortOrder   int       `json:"sortOrder" db:"sort_order"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryRequest is the admin payload for creating or editing a category.
// ID is only read on create; an empty ID gets a generated one.
type CategoryRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// ProductRequest is the admin payload for creating or replacing a product.
// ID is only read on create; an empty ID gets a generated one.
type ProductRequest struct {
	ID                 string          `json:"id,omitempty"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	StockQuantity      *int            `json:"stockQuantity,omitempty"`
	StockStatus        StockStatus     `json:"stockStatus"`
	CashOnDelivery     bool            `json:"cashOnDelivery"`
	Images             []string        `json:"images"`
	CategoryID         *string         `json:"categoryId,omitempty"`
}

// Variant is a stored product_variants row.
type Variant struct {
	ID               string          `json:"id" db:"id"`
	ProductID        string          `json:"productId" db:"product_id"`
	AttributeValueID string          `json:"attributeValueId" db:"attribute_value_id"`
	Price            decimal.Decimal `json:"price" db:"price"`
	StockQuantity    int             `json:"stockQuantity" db:"stock_quantity"`
	IsAvailable      bool            `json:"isAvailable" db:"is_available"`
}

// VariantRequest adds or edits a variant. On update only the fields present
// are changed and the attribute value is fixed.
type VariantRequest struct {
	AttributeValueID string           `json:"attributeValueId"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	StockQuantity    *int             `json:"stockQuantity,omitempty"`
	IsAvailable      *bool            `json:"isAvailable,omitempty"`
}
