// Package variant turns a product's variant rows and a shopper's attribute
// selections into the price, stock and availability that apply.
package variant

import (
	"sort"

	"royal-kart/internal/model"

	"github.com/shopspring/decimal"
)

// Reason explains why a value or product cannot be bought.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonDisabled   Reason = "disabled"
	ReasonOutOfStock Reason = "out_of_stock"
)

// Source says where a resolution's figures came from.
type Source string

const (
	SourceBase    Source = "base"
	SourceVariant Source = "variant"
)

// Value is one selectable attribute value together with its variant.
type Value struct {
	ValueID       string          `json:"valueId"`
	Value         string          `json:"value"`
	VariantID     string          `json:"variantId"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Available     bool            `json:"available"`
	Reason        Reason          `json:"reason,omitempty"`
}

// Dimension is an attribute that has at least one variant on the product.
type Dimension struct {
	AttributeID string  `json:"attributeId"`
	Name        string  `json:"name"`
	Values      []Value `json:"values"`
}

// Resolution is the pricing outcome for a product and a selection.
type Resolution struct {
	UnitPrice          decimal.Decimal    `json:"unitPrice"`
	DiscountPercentage decimal.Decimal    `json:"discountPercentage"`
	StockQuantity      *int               `json:"stockQuantity,omitempty"`
	Available          bool               `json:"available"`
	Reason             Reason             `json:"reason,omitempty"`
	Source             Source             `json:"source"`
	Variant            *model.VariantInfo `json:"variant,omitempty"`
	Selections         []model.Selection  `json:"selections"`
}

// HasVariant reports whether a variant is active.
func (r Resolution) HasVariant() bool {
	return r.Variant != nil
}

func availability(o model.VariantOption) (bool, Reason) {
	switch {
	case !o.IsAvailable:
		return false, ReasonDisabled
	case o.StockQuantity == 0:
		return false, ReasonOutOfStock
	default:
		return true, ReasonNone
	}
}

// Dimensions groups options by attribute, keeping attribute and value sort
// order. Unavailable values are kept and marked.
func Dimensions(options []model.VariantOption) []Dimension {
	sorted := make([]model.VariantOption, len(options))
	copy(sorted, options)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.AttributeOrder != b.AttributeOrder {
			return a.AttributeOrder < b.AttributeOrder
		}
		if a.AttributeID != b.AttributeID {
			return a.AttributeID < b.AttributeID
		}
		return a.ValueOrder < b.ValueOrder
	})

	var dims []Dimension
	index := map[string]int{}
	for _, o := range sorted {
		i, ok := index[o.AttributeID]
		if !ok {
			i = len(dims)
			index[o.AttributeID] = i
			dims = append(dims, Dimension{AttributeID: o.AttributeID, Name: o.AttributeName})
		}
		available, reason := availability(o)
		dims[i].Values = append(dims[i].Values, Value{
			ValueID:       o.ValueID,
			Value:         o.Value,
			VariantID:     o.VariantID,
			Price:         o.Price,
			StockQuantity: o.StockQuantity,
			Available:     available,
			Reason:        reason,
		})
	}
	return dims
}

// AutoSelect fills in the first available value when the product has exactly
// one dimension and the shopper has not chosen anything for it. An existing
// selection, even a stale one, is never replaced.
func AutoSelect(dims []Dimension, selections []model.Selection) []model.Selection {
	if len(dims) != 1 {
		return selections
	}
	dim := dims[0]
	for _, s := range selections {
		if s.AttributeID == dim.AttributeID {
			return selections
		}
	}
	for _, v := range dim.Values {
		if v.Available {
			out := make([]model.Selection, 0, len(selections)+1)
			out = append(out, selections...)
			return append(out, model.Selection{AttributeID: dim.AttributeID, ValueID: v.ValueID})
		}
	}
	return selections
}

// Resolve determines the effective unit price, stock and availability.
//
// Selections are in the order the shopper made them. A variant is active only
// when every dimension has a selection; it is the variant behind the most
// recent selection. With no active variant the product's base price and
// discount apply.
func Resolve(product model.Product, options []model.VariantOption, selections []model.Selection) Resolution {
	base := Resolution{
		UnitPrice:          product.Price,
		DiscountPercentage: product.DiscountPercentage,
		StockQuantity:      product.StockQuantity,
		Available:          !product.SoldOut(),
		Source:             SourceBase,
		Selections:         selections,
	}
	if !base.Available {
		base.Reason = ReasonOutOfStock
	}

	if len(options) == 0 {
		return base
	}

	dims := Dimensions(options)
	selections = AutoSelect(dims, selections)
	base.Selections = selections

	chosen := map[string]bool{}
	for _, s := range selections {
		chosen[s.AttributeID] = true
	}
	for _, d := range dims {
		if !chosen[d.AttributeID] {
			return base
		}
	}

	last := selections[len(selections)-1]
	var active *model.VariantOption
	for i := range options {
		o := &options[i]
		if o.AttributeID == last.AttributeID && o.ValueID == last.ValueID {
			active = o
			break
		}
	}
	if active == nil {
		// Stale selection: the value no longer maps to a variant.
		return base
	}

	available, reason := availability(*active)
	stock := active.StockQuantity
	res := Resolution{
		UnitPrice:          active.Price,
		DiscountPercentage: decimal.Zero,
		StockQuantity:      &stock,
		Available:          available,
		Reason:             reason,
		Source:             SourceVariant,
		Selections:         selections,
	}
	if !available {
		// Visible but never priced from.
		res.UnitPrice = product.Price
		res.DiscountPercentage = product.DiscountPercentage
		return res
	}

	res.Variant = &model.VariantInfo{
		VariantID:     active.VariantID,
		AttributeName: active.AttributeName,
		ValueName:     active.Value,
	}
	return res
}
