package types

import "math"

// Availability status values derived from stock count.
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
)

// MaxTags bounds the number of tags carried per product. Tags beyond the
// limit are dropped at load time.
const MaxTags = 20

// Product represents a catalog item. Products are created during catalog
// load or an explicit reindex and are read-only during request handling.
type Product struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Brand              string   `json:"brand"`
	Price              float64  `json:"price"`
	OriginalPrice      float64  `json:"originalPrice,omitempty"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	Thumbnail          string   `json:"thumbnail,omitempty"`
	Image              string   `json:"image,omitempty"`
	SKU                string   `json:"sku,omitempty"`
}

// InStock reports whether the product has positive stock.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// AvailabilityStatus derives the availability label from the stock count.
func (p Product) AvailabilityStatus() string {
	if p.InStock() {
		return AvailabilityInStock
	}
	return AvailabilityOutOfStock
}

// EffectiveDiscount returns the discount percentage for the product,
// deriving it from the original price when no explicit value is present.
// The derived value is ((original - price) / original) * 100 rounded to
// 2 decimals; when original <= price or either is non-positive it is 0.
func (p Product) EffectiveDiscount() float64 {
	return DeriveDiscount(p.DiscountPercentage, p.Price, p.OriginalPrice)
}

// DeriveDiscount computes the discount percentage from an explicit value
// and a price pair. An explicit non-zero value always wins.
func DeriveDiscount(explicit, price, original float64) float64 {
	if explicit != 0 {
		return explicit
	}
	if original > 0 && price > 0 && price < original {
		return math.Round(100.0*(original-price)/original*100) / 100
	}
	return 0.0
}
