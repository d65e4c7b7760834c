package domain

import "time"

// PaymentMethod identifies how an order is settled.
type PaymentMethod string

const (
	PaymentSepa   PaymentMethod = "sepa"
	PaymentCrypto PaymentMethod = "crypto"
	PaymentCard   PaymentMethod = "card"
)

// OrderTotals is the priced breakdown of an order at submission time.
type OrderTotals struct {
	SubtotalCents int64  `json:"subtotalCents"`
	DiscountCents int64  `json:"discountCents"`
	ShippingCents int64  `json:"shippingCents"`
	TotalCents    int64  `json:"totalCents"`
	Currency      string `json:"currency"`
}

// Customer carries the shipping fields collected at checkout.
type Customer struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	Country     string `json:"country"`
	CountryName string `json:"country_name,omitempty"`
}

// Payment records the chosen method and its progress.
type Payment struct {
	Method PaymentMethod `json:"method"`
	Split  int           `json:"split"`
	Status string        `json:"status"`
}

// Order is created once at checkout submission and immutable afterwards. It
// is persisted locally as a historical record and transmitted to the
// external webhook.
type Order struct {
	ID        string      `json:"id"`
	Items     []CartLine  `json:"items"`
	Totals    OrderTotals `json:"totals"`
	Customer  Customer    `json:"customer"`
	Payment   Payment     `json:"payment"`
	CreatedAt time.Time   `json:"created_at"`
}
