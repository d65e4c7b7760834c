package domain

import "time"

// User is a mock account record kept in local storage. No real security
// model is claimed beyond the bcrypt hash.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Wishlist     []string  `json:"wishlist,omitempty"`
	Orders       []string  `json:"orders,omitempty"`
	CouponUsed   bool      `json:"couponUsed"`
	CreatedAt    time.Time `json:"created_at"`
}
