package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"gfstore/internal/domain"
)

// Fetcher loads the product feed from an ordered list of candidates. Each
// candidate is either an HTTP(S) URL or a local file path; the first one
// that yields a non-empty product array wins. No retry or backoff beyond
// moving to the next candidate.
type Fetcher struct {
	candidates []string
	client     *http.Client
	logger     *log.Logger
}

func NewFetcher(candidates []string, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Fetcher{
		candidates: candidates,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Fetch tries each candidate in order and returns the first non-empty
// normalized product list. It returns an error only when every candidate
// failed or parsed empty.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Product, error) {
	for _, candidate := range f.candidates {
		body, err := f.load(ctx, candidate)
		if err != nil {
			f.logger.Printf("catalog: feed %s: %v", candidate, err)
			continue
		}
		rows, err := ParseFeed(body)
		if err != nil {
			f.logger.Printf("catalog: feed %s: parse: %v", candidate, err)
			continue
		}
		products := Normalize(rows)
		if len(products) == 0 {
			continue
		}
		f.logger.Printf("catalog: loaded %d products from %s", len(products), candidate)
		return products, nil
	}
	return nil, fmt.Errorf("no feed candidate yielded products")
}

func (f *Fetcher) load(ctx context.Context, candidate string) ([]byte, error) {
	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Cache-Control", "no-store")
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(strings.TrimPrefix(candidate, "/"))
}
