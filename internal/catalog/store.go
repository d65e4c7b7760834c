// Package catalog owns the product side of the storefront: loading and
// normalizing the feed, caching it, and computing the filtered catalogue
// view.
package catalog

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"gfstore/internal/domain"
)

const (
	productsKey   = "gf:products"
	productsTsKey = "gf:products:ts"
)

type kv interface {
	Get(key string, v interface{}) bool
	Set(key string, v interface{})
}

type feedSource interface {
	Fetch(ctx context.Context) ([]domain.Product, error)
}

// Store serves the product list from a TTL cache, refreshing from the feed
// when the cache window expires. All never returns an error: a failed
// refresh degrades to an empty list.
type Store struct {
	kv     kv
	source feedSource
	ttl    time.Duration
	logger *log.Logger

	mu sync.Mutex
	// now is swappable in tests.
	now func() time.Time
}

func NewStore(kv kv, source feedSource, ttl time.Duration, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{
		kv:     kv,
		source: source,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// All returns the cached product list while the cache is fresh, otherwise
// refreshes from the feed. The refresh result is cached even when empty, so
// a dead feed is not hammered within one cache window.
func (s *Store) All(ctx context.Context) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stampMs int64
	var cached []domain.Product
	hasStamp := s.kv.Get(productsTsKey, &stampMs)
	hasList := s.kv.Get(productsKey, &cached)

	if hasStamp && hasList {
		age := s.now().Sub(time.UnixMilli(stampMs))
		if age >= 0 && age < s.ttl {
			return cached
		}
	}

	products, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Printf("catalog: refresh failed: %v", err)
		products = []domain.Product{}
	}
	s.kv.Set(productsKey, products)
	s.kv.Set(productsTsKey, s.now().UnixMilli())
	return products
}

// BySKU finds one product in the current list.
func (s *Store) BySKU(ctx context.Context, sku string) (*domain.Product, error) {
	for _, p := range s.All(ctx) {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}
