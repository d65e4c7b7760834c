package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gfstore/internal/domain"
)

type memKV struct {
	data map[string]json.RawMessage
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]json.RawMessage)}
}

func (m *memKV) Get(key string, v interface{}) bool {
	raw, ok := m.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (m *memKV) Set(key string, v interface{}) {
	raw, _ := json.Marshal(v)
	m.data[key] = raw
}

type stubSource struct {
	products []domain.Product
	err      error
	calls    int
}

func (s *stubSource) Fetch(_ context.Context) ([]domain.Product, error) {
	s.calls++
	return s.products, s.err
}

func TestStoreAllUsesFreshCache(t *testing.T) {
	kv := newMemKV()
	source := &stubSource{products: []domain.Product{{SKU: "a"}}}
	store := NewStore(kv, source, 5*time.Minute, nil)

	first := store.All(context.Background())
	second := store.All(context.Background())
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("unexpected product counts: %d, %d", len(first), len(second))
	}
	if source.calls != 1 {
		t.Fatalf("expected one fetch within the cache window, got %d", source.calls)
	}
}

func TestStoreAllRefreshesExpiredCache(t *testing.T) {
	kv := newMemKV()
	source := &stubSource{products: []domain.Product{{SKU: "a"}}}
	store := NewStore(kv, source, 5*time.Minute, nil)

	now := time.Now()
	store.now = func() time.Time { return now }
	store.All(context.Background())

	store.now = func() time.Time { return now.Add(6 * time.Minute) }
	source.products = []domain.Product{{SKU: "a"}, {SKU: "b"}}
	got := store.All(context.Background())

	if source.calls != 2 {
		t.Fatalf("expected refresh after TTL, got %d fetches", source.calls)
	}
	if len(got) != 2 {
		t.Fatalf("expected refreshed list, got %d products", len(got))
	}
}

func TestStoreAllDegradesToEmptyOnFailure(t *testing.T) {
	kv := newMemKV()
	source := &stubSource{err: errors.New("all candidates down")}
	store := NewStore(kv, source, 5*time.Minute, nil)

	got := store.All(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", got)
	}
	// The empty result is cached: no second fetch within the window.
	store.All(context.Background())
	if source.calls != 1 {
		t.Fatalf("expected failure to be cached, got %d fetches", source.calls)
	}
}

func TestStoreBySKU(t *testing.T) {
	kv := newMemKV()
	source := &stubSource{products: []domain.Product{{SKU: "a", Title: "A"}}}
	store := NewStore(kv, source, 5*time.Minute, nil)

	p, err := store.BySKU(context.Background(), "a")
	if err != nil || p.Title != "A" {
		t.Fatalf("unexpected result: %+v, %v", p, err)
	}
	if _, err := store.BySKU(context.Background(), "zz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
