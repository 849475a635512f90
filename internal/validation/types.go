package validation

import (
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

// PaymentRequest is the payload for POST /payments
type PaymentRequest struct {
	CardNumber     string           `json:"cardNumber" validate:"required,notblank,len=16,numeric" example:"4111111111111112"`
	ExpiryMonth    string           `json:"expiryMonth" validate:"required,notblank,expiry_month" example:"12"`       // MM
	ExpiryYear     string           `json:"expiryYear" validate:"required,notblank,expiry_year" example:"2030"`       // YYYY
	CVV            string           `json:"cvv" validate:"required,notblank,min=3,max=4,numeric" example:"123"`       // never persisted
	Amount         *decimal.Decimal `json:"amount" validate:"required,gt=0" swaggertype:"number" example:"100.50"`
	Currency       string           `json:"currency" validate:"required,notblank" example:"USD"`
	IdempotencyKey string           `json:"idempotencyKey" validate:"required,notblank" example:"a1b2c3"`
}

// ToDomain converts a validated request into the core's Request.
func (r PaymentRequest) ToDomain() payments.Request {
	var amount decimal.Decimal
	if r.Amount != nil {
		amount = *r.Amount
	}
	return payments.Request{
		CardNumber:     r.CardNumber,
		ExpiryMonth:    r.ExpiryMonth,
		ExpiryYear:     r.ExpiryYear,
		CVV:            r.CVV,
		Amount:         amount,
		Currency:       r.Currency,
		IdempotencyKey: r.IdempotencyKey,
	}
}
