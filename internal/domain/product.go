package domain

import "time"

// Category is the canonical product category. Raw feeds use a mix of French
// and English labels; normalization maps them onto this small set.
type Category string

const (
	CategoryHomme       Category = "homme"
	CategoryFemme       Category = "femme"
	CategoryEnfant      Category = "enfant"
	CategoryAccessoires Category = "accessoires"
	CategoryAutre       Category = "autre"
)

// PlaceholderImage backs products whose feed entry carries no usable image.
const PlaceholderImage = "images/product-item-1.jpg"

// Color groups the images shot for one colorway.
type Color struct {
	Code   string   `json:"code"`
	Label  string   `json:"label,omitempty"`
	Images []string `json:"images"`
}

// Product is the canonical catalogue entry. Instances are produced by the
// feed normalizer once per cache window and never mutated afterwards.
type Product struct {
	SKU        string         `json:"sku"`
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle,omitempty"`
	Brand      string         `json:"brand,omitempty"`
	PriceCents int64          `json:"priceCents"`
	Currency   string         `json:"currency"`
	Category   Category       `json:"category"`
	Colors     []Color        `json:"colors"`
	Sizes      []string       `json:"sizes"`
	Stock      map[string]int `json:"stock"`
	Tags       []string       `json:"tags,omitempty"`
	IsNew      bool           `json:"isNew"`
	CreatedAt  time.Time      `json:"createdAt,omitempty"`
}

// FirstImage returns the display image for listings.
func (p Product) FirstImage() string {
	if len(p.Colors) > 0 && len(p.Colors[0].Images) > 0 {
		return p.Colors[0].Images[0]
	}
	return PlaceholderImage
}

// AllImages flattens every colorway's images, in color order.
func (p Product) AllImages() []string {
	var out []string
	for _, c := range p.Colors {
		out = append(out, c.Images...)
	}
	if len(out) == 0 {
		out = []string{PlaceholderImage}
	}
	return out
}

// InStock reports whether any size has positive stock. A product with no
// stock map at all is treated as purchasable.
func (p Product) InStock() bool {
	if len(p.Stock) == 0 {
		return true
	}
	for _, n := range p.Stock {
		if n > 0 {
			return true
		}
	}
	return false
}
