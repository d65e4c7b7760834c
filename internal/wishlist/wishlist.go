// Package wishlist keeps per-owner saved product lists. Writes are
// best-effort; a lost wishlist entry is an accepted outcome.
package wishlist

import "strings"

const keyPrefix = "gf:wishlist:"

type kv interface {
	Get(key string, v interface{}) bool
	Set(key string, v interface{})
}

// List stores wishlists keyed by owner, where the owner is a user id for
// logged-in customers and the session id otherwise.
type List struct {
	kv kv
}

func New(kv kv) *List {
	return &List{kv: kv}
}

// Items returns the owner's saved SKUs, oldest first.
func (l *List) Items(owner string) []string {
	var skus []string
	l.kv.Get(keyPrefix+owner, &skus)
	return skus
}

// Contains reports whether the SKU is on the owner's list.
func (l *List) Contains(owner, sku string) bool {
	for _, s := range l.Items(owner) {
		if s == sku {
			return true
		}
	}
	return false
}

// Toggle adds the SKU when absent and removes it when present, returning
// true when the SKU ended up on the list.
func (l *List) Toggle(owner, sku string) bool {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return false
	}
	skus := l.Items(owner)
	for i, s := range skus {
		if s == sku {
			skus = append(skus[:i], skus[i+1:]...)
			l.kv.Set(keyPrefix+owner, skus)
			return false
		}
	}
	l.kv.Set(keyPrefix+owner, append(skus, sku))
	return true
}
