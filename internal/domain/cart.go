package domain

// CartLine is one entry in a cart: a product (optionally narrowed to a
// size) with a quantity. At most one line exists per ID; adding the same ID
// again increments the quantity.
type CartLine struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"qty"`
	Image      string `json:"image,omitempty"`
}

// CartSummary aggregates a cart for badges and checkout totals. Shipping is
// a flat zero (free shipping policy), so Total always equals Subtotal.
type CartSummary struct {
	Qty           int   `json:"qty"`
	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	TotalCents    int64 `json:"totalCents"`
}
