package checkout

import (
	"errors"
	"regexp"
	"strings"

	"gfstore/internal/domain"
)

// MaxProofSize caps the SEPA transfer proof upload at 10 MiB.
const MaxProofSize = 10 << 20

var (
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	digitsRe     = regexp.MustCompile(`\D`)
)

// CardInput carries the raw card form fields.
type CardInput struct {
	Holder string `json:"holder"`
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	Code   string `json:"code"`
}

// Proof is an uploaded transfer confirmation document.
type Proof struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// ValidateCustomer checks the delivery address fields required before any
// payment action.
func ValidateCustomer(c domain.Customer) error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return errors.New("name required")
	case strings.TrimSpace(c.Email) == "":
		return errors.New("email required")
	case strings.TrimSpace(c.Address) == "":
		return errors.New("address required")
	case strings.TrimSpace(c.City) == "":
		return errors.New("city required")
	case strings.TrimSpace(c.Zip) == "":
		return errors.New("zip required")
	case strings.TrimSpace(c.Country) == "":
		return errors.New("country required")
	}
	return nil
}

// ValidateCard checks the card form. The number must carry exactly 16
// digits once separators are stripped, the expiry must be MM/YY and the
// security code at least 3 digits.
func ValidateCard(card CardInput) error {
	if strings.TrimSpace(card.Holder) == "" {
		return errors.New("card holder required")
	}
	if len(digitsOnly(card.Number)) != 16 {
		return errors.New("card number must be 16 digits")
	}
	if !cardExpiryRe.MatchString(strings.TrimSpace(card.Expiry)) {
		return errors.New("card expiry must be MM/YY")
	}
	if len(digitsOnly(card.Code)) < 3 {
		return errors.New("security code must be at least 3 digits")
	}
	return nil
}

// ValidateProof checks an uploaded SEPA proof document.
func ValidateProof(p *Proof) error {
	if p == nil || len(p.Data) == 0 {
		return errors.New("proof document required")
	}
	if len(p.Data) > MaxProofSize {
		return errors.New("proof document too large")
	}
	return nil
}

// ReferenceFromName derives a transfer reference from the customer name:
// uppercased, non-alphanumerics stripped, capped at 16 characters.
func ReferenceFromName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	ref := b.String()
	if len(ref) > 16 {
		ref = ref[:16]
	}
	return ref
}

func digitsOnly(s string) string {
	return digitsRe.ReplaceAllString(s, "")
}
