package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gfstore/internal/config"
	"gfstore/internal/importer"
	"gfstore/internal/storage"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a JSON product feed")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC)

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	store := storage.Open(cfg.StoragePath, logger)
	imp := importer.NewFeedImporter(f, store, logger)

	start := time.Now()
	report, err := imp.Run(context.Background())
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	for _, w := range report.Warnings {
		logger.Printf("warning: %s", w)
	}
	fmt.Printf("Imported %d/%d products (%d dropped) into %s in %s\n",
		report.Imported, report.Total, report.Dropped, cfg.StoragePath,
		time.Since(start).Truncate(time.Millisecond))
}
