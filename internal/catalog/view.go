package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"gfstore/internal/domain"
)

// PageSize is the fixed number of cards per catalogue page.
const PageSize = 12

// Sort keys accepted by the catalogue.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNewest    = "newest"
)

// FilterState is the full catalogue filter, derived from and reflected into
// the request query parameters so views stay shareable and bookmarkable.
type FilterState struct {
	Query       string
	Category    string // canonical category or "all"
	Sort        string
	MinCents    int64 // 0 means no lower bound
	MaxCents    int64 // 0 means no upper bound
	OnlyNew     bool
	OnlyInStock bool
	Page        int
}

// ParseFilterState reads the catalogue query parameters
// (q, filter, sort, min, max, only-new, in-stock, page).
func ParseFilterState(values url.Values) FilterState {
	st := FilterState{
		Query:       strings.TrimSpace(values.Get("q")),
		Category:    strings.ToLower(strings.TrimSpace(values.Get("filter"))),
		Sort:        strings.TrimSpace(values.Get("sort")),
		MinCents:    parseEuros(values.Get("min")),
		MaxCents:    parseEuros(values.Get("max")),
		OnlyNew:     parseFlag(values.Get("only-new")),
		OnlyInStock: parseFlag(values.Get("in-stock")),
		Page:        1,
	}
	if st.Category == "" {
		st.Category = "all"
	}
	switch st.Sort {
	case SortPriceAsc, SortPriceDesc, SortNewest:
	default:
		st.Sort = SortRelevance
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 1 {
		st.Page = page
	}
	return st
}

// QueryValues encodes the state back into query parameters, omitting
// defaults so URLs stay short.
func (st FilterState) QueryValues() url.Values {
	values := url.Values{}
	if st.Query != "" {
		values.Set("q", st.Query)
	}
	if st.Category != "" && st.Category != "all" {
		values.Set("filter", st.Category)
	}
	if st.Sort != "" && st.Sort != SortRelevance {
		values.Set("sort", st.Sort)
	}
	if st.MinCents > 0 {
		values.Set("min", formatEuroParam(st.MinCents))
	}
	if st.MaxCents > 0 {
		values.Set("max", formatEuroParam(st.MaxCents))
	}
	if st.OnlyNew {
		values.Set("only-new", "1")
	}
	if st.OnlyInStock {
		values.Set("in-stock", "1")
	}
	if st.Page > 1 {
		values.Set("page", strconv.Itoa(st.Page))
	}
	return values
}

// Card is one render instruction for the product grid.
type Card struct {
	SKU        string `json:"sku"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	PriceCents int64  `json:"priceCents"`
	PriceLabel string `json:"priceLabel"`
	Image      string `json:"image"`
	IsNew      bool   `json:"isNew"`
}

// PagerItem is one entry of the pagination control.
type PagerItem struct {
	Label    string `json:"label"`
	Page     int    `json:"page"`
	Disabled bool   `json:"disabled,omitempty"`
	Active   bool   `json:"active,omitempty"`
}

// Chip describes an active filter and the query parameter that clears it.
type Chip struct {
	Label  string `json:"label"`
	Clears string `json:"clears"`
}

// View is the computed catalogue page: a pure function of (products, state).
type View struct {
	Cards      []Card      `json:"cards"`
	Pager      []PagerItem `json:"pager"`
	Chips      []Chip      `json:"chips"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Pages      int         `json:"pages"`
	CountLabel string      `json:"countLabel"`
}

// Apply filters, sorts and paginates the product list. The page is clamped
// into [1, max(1, ceil(total/PageSize))].
func Apply(all []domain.Product, st FilterState) View {
	matched := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if matches(p, st) {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, st)

	total := len(matched)
	pages := (total + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	page := st.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}

	cards := make([]Card, 0, end-start)
	for _, p := range matched[start:end] {
		cards = append(cards, Card{
			SKU:        p.SKU,
			Title:      p.Title,
			Category:   CategoryLabel(p.Category),
			PriceCents: p.PriceCents,
			PriceLabel: FormatEUR(p.PriceCents),
			Image:      p.FirstImage(),
			IsNew:      p.IsNew,
		})
	}

	countLabel := "Aucun article"
	if total == 1 {
		countLabel = fmt.Sprintf("1 article — page %d/%d", page, pages)
	} else if total > 1 {
		countLabel = fmt.Sprintf("%d articles — page %d/%d", total, page, pages)
	}

	return View{
		Cards:      cards,
		Pager:      buildPager(page, pages),
		Chips:      buildChips(st),
		Total:      total,
		Page:       page,
		Pages:      pages,
		CountLabel: countLabel,
	}
}

func matches(p domain.Product, st FilterState) bool {
	if !matchesQuery(p, st.Query) {
		return false
	}
	if st.Category != "all" && string(p.Category) != st.Category {
		return false
	}
	if st.MinCents > 0 && p.PriceCents < st.MinCents {
		return false
	}
	if st.MaxCents > 0 && p.PriceCents > st.MaxCents {
		return false
	}
	if st.OnlyNew && !p.IsNew {
		return false
	}
	if st.OnlyInStock && !p.InStock() {
		return false
	}
	return true
}

func matchesQuery(p domain.Product, query string) bool {
	if query == "" {
		return true
	}
	hay := strings.ToLower(p.Title + " " + p.Subtitle + " " + p.Brand + " " + CategoryLabel(p.Category))
	return strings.Contains(hay, strings.ToLower(query))
}

func sortProducts(products []domain.Product, st FilterState) {
	switch st.Sort {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PriceCents < products[j].PriceCents
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PriceCents > products[j].PriceCents
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			// Missing dates are the zero time, which sorts last.
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	default:
		// Relevance: isNew + text match, descending, SKU as the
		// deterministic tie-break.
		sort.SliceStable(products, func(i, j int) bool {
			si, sj := relevance(products[i], st.Query), relevance(products[j], st.Query)
			if si != sj {
				return si > sj
			}
			return products[i].SKU < products[j].SKU
		})
	}
}

func relevance(p domain.Product, query string) int {
	score := 0
	if p.IsNew {
		score++
	}
	if query != "" && matchesQuery(p, query) {
		score++
	}
	return score
}

func buildPager(page, pages int) []PagerItem {
	items := []PagerItem{
		{Label: "«", Page: 1, Disabled: page == 1},
		{Label: "‹", Page: maxInt(1, page-1), Disabled: page == 1},
	}
	const window = 3
	from := maxInt(1, page-window)
	to := minInt(pages, page+window)
	for i := from; i <= to; i++ {
		items = append(items, PagerItem{Label: strconv.Itoa(i), Page: i, Active: i == page})
	}
	items = append(items,
		PagerItem{Label: "›", Page: minInt(pages, page+1), Disabled: page == pages},
		PagerItem{Label: "»", Page: pages, Disabled: page == pages},
	)
	return items
}

func buildChips(st FilterState) []Chip {
	var chips []Chip
	if st.Query != "" {
		chips = append(chips, Chip{Label: fmt.Sprintf("Recherche: %q", st.Query), Clears: "q"})
	}
	if st.Category != "all" {
		chips = append(chips, Chip{Label: "Catégorie: " + CategoryLabel(domain.Category(st.Category)), Clears: "filter"})
	}
	if st.Sort != SortRelevance {
		chips = append(chips, Chip{Label: "Tri: " + st.Sort, Clears: "sort"})
	}
	if st.MinCents > 0 {
		chips = append(chips, Chip{Label: "Min: " + formatEuroParam(st.MinCents) + "€", Clears: "min"})
	}
	if st.MaxCents > 0 {
		chips = append(chips, Chip{Label: "Max: " + formatEuroParam(st.MaxCents) + "€", Clears: "max"})
	}
	if st.OnlyNew {
		chips = append(chips, Chip{Label: "Nouveaux", Clears: "only-new"})
	}
	if st.OnlyInStock {
		chips = append(chips, Chip{Label: "En stock", Clears: "in-stock"})
	}
	return chips
}

// CategoryLabel returns the display label for a canonical category.
func CategoryLabel(c domain.Category) string {
	switch c {
	case domain.CategoryHomme:
		return "Hommes"
	case domain.CategoryFemme:
		return "Femmes"
	case domain.CategoryEnfant:
		return "Enfants"
	case domain.CategoryAccessoires:
		return "Accessoires"
	default:
		return "Produit"
	}
}

// FormatEUR renders cents the French way, with no-break spaces as the
// thousands separator and before the currency sign.
func FormatEUR(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	euros := cents / 100
	rem := cents % 100
	digits := strconv.FormatInt(euros, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune('\u00a0')
		}
		b.WriteRune(d)
	}
	return fmt.Sprintf("%s%s,%02d\u00a0€", sign, b.String(), rem)
}

func parseEuros(raw string) int64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return int64(v*100 + 0.5)
}

func formatEuroParam(cents int64) string {
	if cents%100 == 0 {
		return strconv.FormatInt(cents/100, 10)
	}
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
