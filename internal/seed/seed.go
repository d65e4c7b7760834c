// Package seed fills the local store with a demo catalogue so the
// storefront works without a reachable product feed.
package seed

import (
	"time"

	"gfstore/internal/domain"
)

const (
	productsKey   = "gf:products"
	productsTsKey = "gf:products:ts"
)

type kv interface {
	Set(key string, v interface{})
}

// Apply writes the demo products and stamps the cache as fresh.
func Apply(kv kv) int {
	products := Products()
	kv.Set(productsKey, products)
	kv.Set(productsTsKey, time.Now().UnixMilli())
	return len(products)
}

// Products returns the demo catalogue.
func Products() []domain.Product {
	created := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}
	return []domain.Product{
		{
			SKU: "veste-denim-oversize", Title: "Veste denim oversize", Brand: "GF Studio",
			PriceCents: 12990, Currency: "EUR", Category: domain.CategoryHomme,
			Colors: []domain.Color{{Code: "indigo", Label: "Indigo", Images: []string{"images/product-item-1.jpg"}}},
			Sizes:  []string{"S", "M", "L", "XL"},
			Stock:  map[string]int{"S": 4, "M": 8, "L": 6, "XL": 2},
			Tags:   []string{"nouveaute"}, IsNew: true, CreatedAt: created("2026-07-15"),
		},
		{
			SKU: "robe-midi-satin", Title: "Robe midi satinée", Brand: "GF Studio",
			PriceCents: 8990, Currency: "EUR", Category: domain.CategoryFemme,
			Colors: []domain.Color{
				{Code: "champagne", Label: "Champagne", Images: []string{"images/product-item-2.jpg"}},
				{Code: "noir", Label: "Noir", Images: []string{"images/product-item-3.jpg"}},
			},
			Sizes: []string{"XS", "S", "M", "L"},
			Stock: map[string]int{"XS": 3, "S": 5, "M": 7, "L": 1},
			IsNew: true, Tags: []string{"nouveaute"}, CreatedAt: created("2026-08-01"),
		},
		{
			SKU: "sweat-capuche-enfant", Title: "Sweat à capuche enfant", Brand: "GF Kids",
			PriceCents: 3490, Currency: "EUR", Category: domain.CategoryEnfant,
			Colors: []domain.Color{{Code: "marine", Label: "Marine", Images: []string{"images/product-item-4.jpg"}}},
			Sizes:  []string{"6A", "8A", "10A"},
			Stock:  map[string]int{"6A": 10, "8A": 12, "10A": 9},
			CreatedAt: created("2026-05-20"),
		},
		{
			SKU: "ceinture-cuir-tresse", Title: "Ceinture cuir tressé", Brand: "GF Atelier",
			PriceCents: 4590, Currency: "EUR", Category: domain.CategoryAccessoires,
			Colors: []domain.Color{{Code: "cognac", Label: "Cognac", Images: []string{"images/product-item-5.jpg"}}},
			Sizes:  []string{"U"},
			Stock:  map[string]int{"U": 14},
			CreatedAt: created("2026-03-02"),
		},
		{
			SKU: "chemise-lin-blanche", Title: "Chemise en lin blanche", Brand: "GF Studio",
			PriceCents: 6490, Currency: "EUR", Category: domain.CategoryHomme,
			Colors: []domain.Color{{Code: "blanc", Label: "Blanc", Images: []string{"images/product-item-6.jpg"}}},
			Sizes:  []string{"S", "M", "L", "XL"},
			Stock:  map[string]int{"S": 0, "M": 3, "L": 5, "XL": 4},
			CreatedAt: created("2026-04-11"),
		},
		{
			SKU: "sac-bandouliere-nylon", Title: "Sac bandoulière nylon", Brand: "GF Atelier",
			PriceCents: 5990, Currency: "EUR", Category: domain.CategoryAccessoires,
			Colors: []domain.Color{{Code: "noir", Label: "Noir", Images: []string{"images/product-item-7.jpg"}}},
			Sizes:  []string{"U"},
			Stock:  map[string]int{"U": 0},
			CreatedAt: created("2026-01-18"),
		},
	}
}
