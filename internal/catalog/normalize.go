package catalog

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"gfstore/internal/domain"
)

// rawProduct tolerates the aliased, half-optional shape of the product feed.
// Everything downstream of Normalize works with domain.Product only.
type rawProduct struct {
	SKU       string          `json:"sku"`
	Slug      string          `json:"slug"`
	Title     string          `json:"title"`
	Name      string          `json:"name"`
	Subtitle  string          `json:"subtitle"`
	Brand     string          `json:"brand"`
	Price     *float64        `json:"price"`
	Prix      *float64        `json:"prix"`
	Currency  string          `json:"currency"`
	Category  string          `json:"category"`
	Categorie string          `json:"categorie"`
	Gender    string          `json:"gender"`
	Genre     string          `json:"genre"`
	Colors    []rawColor      `json:"colors"`
	Images    []string        `json:"images"`
	Hero      string          `json:"hero"`
	Sizes     []string        `json:"sizes"`
	Stock     json.RawMessage `json:"stock"`
	Tags      []string        `json:"tags"`
	IsNew     bool            `json:"is_new"`
	CreatedAt string          `json:"created_at"`
	Date      string          `json:"date"`
}

type rawColor struct {
	Code   string   `json:"code"`
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Name   string   `json:"name"`
	Images []string `json:"images"`
}

var categorySynonyms = map[domain.Category][]string{
	domain.CategoryHomme:       {"homme", "hommes", "men", "man"},
	domain.CategoryFemme:       {"femme", "femmes", "women", "woman"},
	domain.CategoryEnfant:      {"enfant", "enfants", "kids", "kid", "junior", "boy", "girl"},
	domain.CategoryAccessoires: {"accessoires", "accessoire", "accessory", "accessories", "cap", "hat", "gloves", "bonnet", "echarpe", "scarf"},
}

// ParseFeed decodes a feed document, which is either a bare array of
// products or an object with a "products" array.
func ParseFeed(body []byte) ([]rawProduct, error) {
	var list []rawProduct
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Products []rawProduct `json:"products"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Products, nil
}

// Normalize converts raw feed rows into canonical products, filling defaults
// so rendering code never has to defend against missing fields. Rows with
// neither SKU nor title are dropped.
func Normalize(rows []rawProduct) []domain.Product {
	out := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		p, ok := normalizeOne(r)
		if ok {
			out = append(out, p)
		}
	}
	return out
}

func normalizeOne(r rawProduct) (domain.Product, bool) {
	title := firstNonEmpty(r.Title, r.Name)
	sku := strings.TrimSpace(r.SKU)
	if sku == "" && title == "" {
		return domain.Product{}, false
	}
	if sku == "" {
		sku = slugify(title)
	}
	if title == "" {
		title = sku
	}

	price := 0.0
	if r.Price != nil {
		price = *r.Price
	} else if r.Prix != nil {
		price = *r.Prix
	}
	if price < 0 {
		price = 0
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = "EUR"
	}

	sizes := r.Sizes
	if len(sizes) == 0 {
		sizes = []string{"U"}
	}

	p := domain.Product{
		SKU:        sku,
		Title:      title,
		Subtitle:   strings.TrimSpace(r.Subtitle),
		Brand:      strings.TrimSpace(r.Brand),
		PriceCents: int64(math.Round(price * 100)),
		Currency:   currency,
		Category:   canonicalCategory(firstNonEmpty(r.Category, r.Categorie, r.Gender, r.Genre)),
		Colors:     normalizeColors(r),
		Sizes:      sizes,
		Stock:      normalizeStock(r.Stock, sizes),
		Tags:       r.Tags,
		IsNew:      r.IsNew || hasNewTag(r.Tags),
		CreatedAt:  parseDate(firstNonEmpty(r.CreatedAt, r.Date)),
	}
	return p, true
}

func canonicalCategory(raw string) domain.Category {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return domain.CategoryAutre
	}
	for cat, synonyms := range categorySynonyms {
		for _, syn := range synonyms {
			if strings.Contains(key, syn) {
				return cat
			}
		}
	}
	return domain.CategoryAutre
}

func normalizeColors(r rawProduct) []domain.Color {
	var colors []domain.Color
	for _, c := range r.Colors {
		images := nonEmpty(c.Images)
		if len(images) == 0 {
			images = []string{domain.PlaceholderImage}
		}
		colors = append(colors, domain.Color{
			Code:   firstNonEmpty(c.Code, c.Key, slugify(firstNonEmpty(c.Label, c.Name))),
			Label:  firstNonEmpty(c.Label, c.Name),
			Images: images,
		})
	}
	if len(colors) > 0 {
		return colors
	}
	// Synthesize a single colorway from loose images, then the hero shot,
	// then the placeholder.
	images := nonEmpty(r.Images)
	if len(images) == 0 && strings.TrimSpace(r.Hero) != "" {
		images = []string{strings.TrimSpace(r.Hero)}
	}
	if len(images) == 0 {
		images = []string{domain.PlaceholderImage}
	}
	return []domain.Color{{Code: "default", Images: images}}
}

// normalizeStock accepts either a size->count map or a bare number. A scalar
// applies to every size so that "scalar > 0" keeps meaning purchasable.
func normalizeStock(raw json.RawMessage, sizes []string) map[string]int {
	if len(raw) == 0 {
		return nil
	}
	var perSize map[string]int
	if err := json.Unmarshal(raw, &perSize); err == nil {
		for size, n := range perSize {
			if n < 0 {
				perSize[size] = 0
			}
		}
		return perSize
	}
	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err != nil {
		return nil
	}
	n := int(scalar)
	if n < 0 {
		n = 0
	}
	out := make(map[string]int, len(sizes))
	for _, size := range sizes {
		out[size] = n
	}
	return out
}

func hasNewTag(tags []string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), "nouve") {
			return true
		}
	}
	return false
}

func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
