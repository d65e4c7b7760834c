package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(corsMiddleware(deps.AllowedOrigins))

	h := &handlers{deps: deps, logger: logger}
	router.Use(h.sessionMiddleware())

	router.GET("/healthz", healthHandler)

	router.GET("/catalogue", h.catalogueView)
	router.GET("/products", h.listProducts)
	router.GET("/products/:sku", h.getProduct)

	router.GET("/cart", h.getCart)
	router.POST("/cart/items", h.addCartItem)
	router.PATCH("/cart/items/:id", h.updateCartItem)
	router.DELETE("/cart/items/:id", h.removeCartItem)
	router.DELETE("/cart", h.clearCart)

	router.GET("/checkout/summary", h.checkoutSummary)
	router.GET("/checkout/wallets", h.checkoutWallets)
	router.POST("/checkout/method", h.selectMethod)
	router.POST("/checkout/split", h.setSplit)
	router.POST("/checkout/verify/sepa", h.verifySepa)
	router.POST("/checkout/verify/crypto", h.verifyCrypto)
	router.POST("/checkout/card", h.payCard)
	router.POST("/checkout/order", h.placeOrder)

	router.GET("/orders", h.listOrders)
	router.GET("/orders/last", h.lastOrder)
	router.GET("/orders/:id", h.getOrder)

	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)
	router.POST("/auth/logout", h.logout)
	router.POST("/auth/reset", h.resetPassword)
	router.GET("/auth/me", h.me)

	router.GET("/wishlist", h.getWishlist)
	router.POST("/wishlist/toggle", h.toggleWishlist)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "X-Session-Token"}
	cfg.ExposeHeaders = []string{"X-Session-Token"}
	return cors.New(cfg)
}
