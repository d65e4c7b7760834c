package main

import (
	"log"
	"os"

	"gfstore/internal/config"
	"gfstore/internal/seed"
	"gfstore/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	store := storage.Open(cfg.StoragePath, logger)
	count := seed.Apply(store)

	logger.Printf("seeded %d demo products into %s", count, cfg.StoragePath)
}
