package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gfstore/internal/domain"
)

// badRequest answers a client error with a short machine code and a toast
// message for the storefront UI.
func badRequest(c *gin.Context, err error, toast string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "toast": toast})
}

// respondErr maps service errors onto status codes. Unknown errors stay
// opaque to the client.
func respondErr(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
