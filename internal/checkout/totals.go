package checkout

import (
	"fmt"
	"math"
	"time"

	"gfstore/internal/domain"
)

// CouponCode is the first-order coupon, worth 10% of the subtotal.
const CouponCode = "GF-FIRST10"

// PromoRate is the fixed discount rate granted for a payment method.
func PromoRate(method domain.PaymentMethod) float64 {
	switch method {
	case domain.PaymentSepa:
		return 0.03
	case domain.PaymentCrypto:
		return 0.01
	default:
		return 0
	}
}

// Totals prices a cart summary for the chosen method. The coupon stacks
// with the method promo; the total never goes below zero.
func Totals(summary domain.CartSummary, method domain.PaymentMethod, couponApplied bool) domain.OrderTotals {
	sub := summary.SubtotalCents
	discount := int64(math.Round(float64(sub) * PromoRate(method)))
	if couponApplied {
		discount += int64(math.Round(float64(sub) * 0.10))
	}
	total := sub + summary.ShippingCents - discount
	if total < 0 {
		total = 0
	}
	return domain.OrderTotals{
		SubtotalCents: sub,
		DiscountCents: discount,
		ShippingCents: summary.ShippingCents,
		TotalCents:    total,
		Currency:      "EUR",
	}
}

// SplitCents divides a total into N installments with cents-based flooring;
// the first installment absorbs the rounding remainder, so the sum is
// always exactly the total and the first installment is never the smallest.
func SplitCents(totalCents int64, parts int) []int64 {
	if parts < 1 {
		parts = 1
	}
	base := totalCents / int64(parts)
	first := base + (totalCents - base*int64(parts))
	out := make([]int64, parts)
	out[0] = first
	for i := 1; i < parts; i++ {
		out[i] = base
	}
	return out
}

// DueNow is the first installment of the split.
func DueNow(totalCents int64, parts int) int64 {
	return SplitCents(totalCents, parts)[0]
}

// Installment is one scheduled payment of a split.
type Installment struct {
	Label       string `json:"label"`
	Date        string `json:"date"`
	AmountCents int64  `json:"amountCents"`
}

// Schedule lays the installments out at 0/30/60/90 days from now.
func Schedule(totalCents int64, parts int, now time.Time) []Installment {
	amounts := SplitCents(totalCents, parts)
	steps := []int{0, 30, 60, 90}
	out := make([]Installment, 0, len(amounts))
	for i, amt := range amounts {
		days := steps[len(steps)-1]
		if i < len(steps) {
			days = steps[i]
		}
		label := "Heute"
		if days > 0 {
			label = fmt.Sprintf("In %d Tagen", days)
		}
		date := now.AddDate(0, 0, days)
		out = append(out, Installment{
			Label:       label,
			Date:        date.Format("02.01.2006"),
			AmountCents: amt,
		})
	}
	return out
}
