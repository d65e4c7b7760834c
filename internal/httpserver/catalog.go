package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gfstore/internal/catalog"
	"gfstore/internal/domain"
)

// catalogueView serves the filtered, sorted and paginated product grid.
// The filter is read from the query string and echoed back in canonical
// form so the page stays shareable.
func (h *handlers) catalogueView(c *gin.Context) {
	state := catalog.ParseFilterState(c.Request.URL.Query())
	products := h.deps.Catalog.All(c.Request.Context())
	view := catalog.Apply(products, state)
	c.JSON(http.StatusOK, gin.H{
		"view":  view,
		"query": state.QueryValues().Encode(),
	})
}

func (h *handlers) listProducts(c *gin.Context) {
	products := h.deps.Catalog.All(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// getProduct serves one product with the selected colorway and size echoed
// back; unknown selections fall back to the first option.
func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.BySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondErr(c, err)
		return
	}

	color := selectColor(*p, c.Query("color"))
	size := selectSize(*p, c.Query("size"))

	c.JSON(http.StatusOK, gin.H{
		"product":       p,
		"selectedColor": color,
		"selectedSize":  size,
		"gallery":       p.AllImages(),
		"priceLabel":    catalog.FormatEUR(p.PriceCents),
		"inStock":       p.InStock(),
		"wished":        h.deps.Wishlist.Contains(h.wishlistOwner(c), p.SKU),
	})
}

func selectColor(p domain.Product, code string) string {
	code = strings.TrimSpace(code)
	for _, col := range p.Colors {
		if col.Code == code {
			return code
		}
	}
	if len(p.Colors) > 0 {
		return p.Colors[0].Code
	}
	return ""
}

func selectSize(p domain.Product, size string) string {
	size = strings.TrimSpace(size)
	for _, s := range p.Sizes {
		if s == size {
			return size
		}
	}
	if len(p.Sizes) > 0 {
		return p.Sizes[0]
	}
	return ""
}
