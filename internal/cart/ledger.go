// Package cart implements the cart ledger: an ordered list of line items
// persisted to local storage, with additive adds, clamped quantity updates
// and change notifications.
package cart

import (
	"io"
	"log"
	"strings"

	"gfstore/internal/domain"
)

const (
	keyPrefix = "gf:cart:"

	// MinQty and MaxQty bound a line's quantity on update.
	MinQty = 1
	MaxQty = 99
)

type kv interface {
	Get(key string, v interface{}) bool
	Set(key string, v interface{})
	Remove(key string)
}

// Ledger owns one cart, identified by its session. All operations are
// synchronous and assume exclusive access to the underlying storage; two
// writers on the same cart overwrite each other (accepted risk).
type Ledger struct {
	kv        kv
	key       string
	logger    *log.Logger
	listeners []func(domain.CartSummary)
}

func New(kv kv, session string, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Ledger{kv: kv, key: keyPrefix + session, logger: logger}
}

// OnChange registers a listener fired after every mutation.
func (l *Ledger) OnChange(fn func(domain.CartSummary)) {
	l.listeners = append(l.listeners, fn)
}

// Items returns the current line items, oldest first.
func (l *Ledger) Items() []domain.CartLine {
	var items []domain.CartLine
	l.kv.Get(l.key, &items)
	return items
}

// LineID derives the stable line identity for a product and an optional
// chosen size.
func LineID(p domain.Product, size string) string {
	id := p.SKU
	if id == "" {
		id = p.Title
	}
	if size = strings.TrimSpace(size); size != "" {
		id += "|" + size
	}
	return id
}

// Add appends a line for the product, or increments the quantity when a
// line with the same id already exists, and returns the resulting line.
func (l *Ledger) Add(p domain.Product, size string, qty int) domain.CartLine {
	if qty < 1 {
		qty = 1
	}
	id := LineID(p, size)
	items := l.Items()
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity += qty
			l.persist(items)
			return items[i]
		}
	}
	line := domain.CartLine{
		ID:         id,
		Name:       p.Title,
		PriceCents: p.PriceCents,
		Quantity:   qty,
		Image:      p.FirstImage(),
	}
	items = append(items, line)
	l.persist(items)
	return line
}

// Update sets a line's quantity, clamped to [MinQty, MaxQty]. Unknown ids
// are a no-op.
func (l *Ledger) Update(id string, qty int) {
	if qty < MinQty {
		qty = MinQty
	}
	if qty > MaxQty {
		qty = MaxQty
	}
	items := l.Items()
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity = qty
			l.persist(items)
			return
		}
	}
}

// Remove drops the line with the given id.
func (l *Ledger) Remove(id string) {
	items := l.Items()
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	l.persist(kept)
}

// Clear empties the cart.
func (l *Ledger) Clear() {
	l.kv.Remove(l.key)
	l.notify()
}

// Summary aggregates quantities and totals. Shipping is a flat zero, so
// Total always equals Subtotal.
func (l *Ledger) Summary() domain.CartSummary {
	return Summarize(l.Items())
}

// Summarize computes the summary of an arbitrary item list.
func Summarize(items []domain.CartLine) domain.CartSummary {
	var s domain.CartSummary
	for _, it := range items {
		s.Qty += it.Quantity
		s.SubtotalCents += it.PriceCents * int64(it.Quantity)
	}
	s.TotalCents = s.SubtotalCents + s.ShippingCents
	return s
}

func (l *Ledger) persist(items []domain.CartLine) {
	l.kv.Set(l.key, items)
	l.notify()
}

func (l *Ledger) notify() {
	summary := l.Summary()
	for _, fn := range l.listeners {
		fn(summary)
	}
}
