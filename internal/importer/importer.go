// Package importer loads a product feed document into the local store,
// reporting what was kept and what was dropped.
package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"gfstore/internal/catalog"
	"gfstore/internal/domain"
)

const (
	productsKey   = "gf:products"
	productsTsKey = "gf:products:ts"
)

type kv interface {
	Set(key string, v interface{})
}

// Report summarises one import run.
type Report struct {
	Total    int
	Imported int
	Dropped  int
	Warnings []string
}

// FeedImporter parses a JSON product feed and replaces the cached product
// list, stamping the cache so the server treats it as fresh.
type FeedImporter struct {
	reader io.Reader
	kv     kv
	logger *log.Logger
	now    func() time.Time
}

func NewFeedImporter(r io.Reader, kv kv, logger *log.Logger) *FeedImporter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &FeedImporter{
		reader: r,
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// Run parses the feed and writes the normalized products to the store.
func (i *FeedImporter) Run(ctx context.Context) (Report, error) {
	body, err := io.ReadAll(i.reader)
	if err != nil {
		return Report{}, fmt.Errorf("read feed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	rows, err := catalog.ParseFeed(body)
	if err != nil {
		return Report{}, fmt.Errorf("parse feed: %w", err)
	}

	products := catalog.Normalize(rows)
	report := Report{
		Total:    len(rows),
		Imported: len(products),
		Dropped:  len(rows) - len(products),
	}
	report.Warnings = inspect(products)

	i.kv.Set(productsKey, products)
	i.kv.Set(productsTsKey, i.now().UnixMilli())
	i.logger.Printf("imported %d/%d products (%d dropped)", report.Imported, report.Total, report.Dropped)
	return report, nil
}

// inspect flags rows that normalized successfully but look suspicious.
func inspect(products []domain.Product) []string {
	var warnings []string
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if seen[p.SKU] {
			warnings = append(warnings, fmt.Sprintf("duplicate sku %q", p.SKU))
		}
		seen[p.SKU] = true
		if p.PriceCents <= 0 {
			warnings = append(warnings, fmt.Sprintf("product %q has no price", p.SKU))
		}
		if p.Category == domain.CategoryAutre {
			warnings = append(warnings, fmt.Sprintf("product %q has an unrecognized category", p.SKU))
		}
	}
	return warnings
}
