package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gfstore/internal/auth"
	"gfstore/internal/catalog"
	"gfstore/internal/checkout"
	"gfstore/internal/config"
	"gfstore/internal/httpserver"
	"gfstore/internal/storage"
	"gfstore/internal/webhook"
	"gfstore/internal/wishlist"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	store := storage.Open(cfg.StoragePath, logger)
	logger.Printf("storage %s: %d active cart(s)", cfg.StoragePath, len(store.Keys("gf:cart:")))

	fetcher := catalog.NewFetcher(cfg.FeedURLs, logger)
	catalogStore := catalog.NewStore(store, fetcher, cfg.FeedCacheTTL, logger)

	authService := auth.New(store, cfg.SessionTTL, logger)
	hooks := webhook.New(cfg.WebhookURL, cfg.WebhookSecret, cfg.PublicOrigin, cfg.WebhookTimeout, logger)
	checkoutService := checkout.New(store, hooks, authService, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Store:          store,
		Catalog:        catalogStore,
		Checkout:       checkoutService,
		Auth:           authService,
		Wishlist:       wishlist.New(store),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
