package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// keySeparator joins product and variant ids in a line key's string form.
const keySeparator = "~"

// LineKey identifies a cart line. VariantID is empty for products bought
// without a variant.
type LineKey struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
}

// String renders the key for use in URLs.
func (k LineKey) String() string {
	if k.VariantID == "" {
		return k.ProductID
	}
	return k.ProductID + keySeparator + k.VariantID
}

// ParseLineKey is the inverse of LineKey.String.
func ParseLineKey(s string) (LineKey, bool) {
	productID, variantID, _ := strings.Cut(s, keySeparator)
	if productID == "" {
		return LineKey{}, false
	}
	return LineKey{ProductID: productID, VariantID: variantID}, true
}

// CartLine is one aggregated purchasable selection.
type CartLine struct {
	ProductID          string          `json:"productId"`
	Name               string          `json:"name"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Quantity           int             `json:"quantity"`
	Image              string          `json:"image,omitempty"`
	CashOnDelivery     bool            `json:"cashOnDelivery"`
	Variant            *VariantInfo    `json:"variant,omitempty"`
}

// Key returns the line's identity.
func (l CartLine) Key() LineKey {
	k := LineKey{ProductID: l.ProductID}
	if l.Variant != nil {
		k.VariantID = l.Variant.VariantID
	}
	return k
}

// EffectiveUnitPrice is the unit price after the line's discount.
func (l CartLine) EffectiveUnitPrice() decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(l.DiscountPercentage.Div(decimal.NewFromInt(100)))
	return l.UnitPrice.Mul(factor)
}

// LineTotal is quantity times the effective unit price.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Selection is one attribute value chosen by the shopper.
type Selection struct {
	AttributeID string `json:"attributeId"`
	ValueID     string `json:"valueId"`
}

// AddToCartRequest is the payload for both the product page and the listing
// quick-add button. Selections are empty for quick-add.
type AddToCartRequest struct {
	ProductID  string      `json:"productId"`
	Selections []Selection `json:"selections,omitempty"`
	Quantity   int         `json:"quantity,omitempty"`
}

// QuantityRequest sets a line's quantity.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartView is the cart as returned to the shopper.
type CartView struct {
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
