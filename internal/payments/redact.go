package payments

import "strings"

const (
	maskBlock     = "XXXX"
	maskDelimiter = "-"
	maskBlocks    = 3
	visibleDigits = 4
)

// MaskCardNumber hides everything but the last four characters of a card
// number: "4111111111111112" becomes "XXXX-XXXX-XXXX-1112".
func MaskCardNumber(cardNumber string) (string, error) {
	if len(cardNumber) < visibleDigits {
		return "", ErrCardNumberTooShort
	}
	var b strings.Builder
	for i := 0; i < maskBlocks; i++ {
		b.WriteString(maskBlock)
		b.WriteString(maskDelimiter)
	}
	b.WriteString(cardNumber[len(cardNumber)-visibleDigits:])
	return b.String(), nil
}

// NewView derives the redacted view of p.
func NewView(p Payment) (View, error) {
	masked, err := MaskCardNumber(p.CardNumber)
	if err != nil {
		return View{}, err
	}
	return View{
		ID:               p.ID,
		MaskedCardNumber: masked,
		ExpiryMonth:      p.ExpiryMonth,
		ExpiryYear:       p.ExpiryYear,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           p.Status,
	}, nil
}
