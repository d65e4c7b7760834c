// Package httpserver exposes the storefront over HTTP: catalogue,
// cart, checkout, orders, accounts and wishlist.
package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gfstore/internal/auth"
	"gfstore/internal/catalog"
	"gfstore/internal/checkout"
	"gfstore/internal/storage"
	"gfstore/internal/wishlist"
)

// Deps bundles the services the router needs.
type Deps struct {
	Store    *storage.Store
	Catalog  *catalog.Store
	Checkout *checkout.Service
	Auth     *auth.Service
	Wishlist *wishlist.List

	// AllowedOrigins configures CORS; ["*"] allows everything.
	AllowedOrigins []string
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds a Server with the storefront routes.
func New(addr string, logger *log.Logger, deps Deps) *Server {
	router := buildRouter(logger, deps)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
