package cart

import (
	"encoding/json"
	"testing"

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

func (m *memKV) Remove(key string) {
	delete(m.data, key)
}

func product(sku string, cents int64) domain.Product {
	return domain.Product{SKU: sku, Title: "P " + sku, PriceCents: cents}
}

func TestAddSameIDIncrementsQuantity(t *testing.T) {
	l := New(newMemKV(), "s1", nil)

	l.Add(product("a", 1000), "", 2)
	l.Add(product("a", 1000), "", 3)

	items := l.Items()
	if len(items) != 1 {
		t.Fatalf("expected a single line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected additive quantity 5, got %d", items[0].Quantity)
	}
}

func TestAddWithSizeIsDistinctLine(t *testing.T) {
	l := New(newMemKV(), "s1", nil)
	l.Add(product("a", 1000), "M", 1)
	l.Add(product("a", 1000), "L", 1)
	l.Add(product("a", 1000), "M", 1)

	items := l.Items()
	if len(items) != 2 {
		t.Fatalf("expected two lines (per size), got %d", len(items))
	}
	if items[0].ID != "a|M" || items[0].Quantity != 2 {
		t.Fatalf("unexpected first line %+v", items[0])
	}
}

func TestSummaryTotalsEqualSubtotal(t *testing.T) {
	l := New(newMemKV(), "s1", nil)
	l.Add(product("a", 1000), "", 2)
	l.Add(product("b", 2500), "", 1)

	s := l.Summary()
	if s.Qty != 3 {
		t.Fatalf("expected qty 3, got %d", s.Qty)
	}
	if s.SubtotalCents != 4500 {
		t.Fatalf("expected subtotal 4500, got %d", s.SubtotalCents)
	}
	if s.ShippingCents != 0 || s.TotalCents != s.SubtotalCents {
		t.Fatalf("shipping must be zero and total equal subtotal: %+v", s)
	}
}

func TestUpdateClampsQuantity(t *testing.T) {
	l := New(newMemKV(), "s1", nil)
	l.Add(product("a", 1000), "", 1)

	l.Update("a", 500)
	if got := l.Items()[0].Quantity; got != MaxQty {
		t.Fatalf("expected clamp to %d, got %d", MaxQty, got)
	}

	l.Update("a", 0)
	if got := l.Items()[0].Quantity; got != MinQty {
		t.Fatalf("expected clamp to %d, got %d", MinQty, got)
	}

	// Unknown id is a no-op.
	l.Update("zz", 5)
	if len(l.Items()) != 1 {
		t.Fatalf("unexpected items after unknown update: %v", l.Items())
	}
}

func TestRemoveAndClear(t *testing.T) {
	l := New(newMemKV(), "s1", nil)
	l.Add(product("a", 1000), "", 1)
	l.Add(product("b", 2000), "", 1)

	l.Remove("a")
	if items := l.Items(); len(items) != 1 || items[0].ID != "b" {
		t.Fatalf("unexpected items after remove: %v", items)
	}

	l.Clear()
	if items := l.Items(); len(items) != 0 {
		t.Fatalf("expected empty cart, got %v", items)
	}
}

func TestOnChangeFiresAfterMutations(t *testing.T) {
	l := New(newMemKV(), "s1", nil)
	var last domain.CartSummary
	calls := 0
	l.OnChange(func(s domain.CartSummary) { last = s; calls++ })

	l.Add(product("a", 1000), "", 2)
	l.Update("a", 3)
	l.Remove("a")

	if calls != 3 {
		t.Fatalf("expected 3 notifications, got %d", calls)
	}
	if last.Qty != 0 {
		t.Fatalf("expected final summary empty, got %+v", last)
	}
}

func TestLedgersAreSessionScoped(t *testing.T) {
	kv := newMemKV()
	a := New(kv, "alice", nil)
	b := New(kv, "bob", nil)

	a.Add(product("a", 1000), "", 1)
	if len(b.Items()) != 0 {
		t.Fatalf("session carts must not leak into each other")
	}
}
