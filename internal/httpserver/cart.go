package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	SKU  string `json:"sku" binding:"required"`
	Size string `json:"size"`
	Qty  int    `json:"qty"`
}

type updateItemRequest struct {
	Qty int `json:"qty"`
}

func (h *handlers) getCart(c *gin.Context) {
	ledger := h.ledger(c)
	c.JSON(http.StatusOK, gin.H{
		"items":   ledger.Items(),
		"summary": ledger.Summary(),
	})
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Article invalide")
		return
	}
	p, err := h.deps.Catalog.BySKU(c.Request.Context(), req.SKU)
	if err != nil {
		respondErr(c, err)
		return
	}
	if !p.InStock() {
		badRequest(c, errors.New("product out of stock"), "Article épuisé")
		return
	}
	ledger := h.ledger(c)
	line := ledger.Add(*p, req.Size, req.Qty)
	c.JSON(http.StatusCreated, gin.H{
		"line":    line,
		"summary": ledger.Summary(),
		"toast":   "Ajouté au panier",
	})
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Quantité invalide")
		return
	}
	ledger := h.ledger(c)
	ledger.Update(c.Param("id"), req.Qty)
	c.JSON(http.StatusOK, gin.H{
		"items":   ledger.Items(),
		"summary": ledger.Summary(),
	})
}

func (h *handlers) removeCartItem(c *gin.Context) {
	ledger := h.ledger(c)
	ledger.Remove(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"items":   ledger.Items(),
		"summary": ledger.Summary(),
	})
}

func (h *handlers) clearCart(c *gin.Context) {
	ledger := h.ledger(c)
	ledger.Clear()
	c.JSON(http.StatusOK, gin.H{"summary": ledger.Summary()})
}
