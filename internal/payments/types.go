package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the authorization outcome recorded on a payment.
type Status string

// Payment statuses. A payment gets exactly one of these at creation and never changes.
const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Outcome messages returned on freshly processed payments. Replays carry an empty message.
const (
	MessageSuccess = "Payment processed successfully."
	MessageFailure = "Payment processing failed."
)

// Payment is the durable record owned by the Ledger.
type Payment struct {
	ID             string
	CardNumber     string
	ExpiryMonth    string // MM
	ExpiryYear     string // YYYY
	Amount         decimal.Decimal
	Currency       string
	Status         Status
	IdempotencyKey string
	CreatedAt      time.Time
}

// Request is an inbound card payment, already validated by the caller.
// CVV is handed to the Authorizer and never persisted.
type Request struct {
	CardNumber     string
	ExpiryMonth    string
	ExpiryYear     string
	CVV            string
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
}

// Outcome is what Process returns to the caller.
type Outcome struct {
	ID      string
	Status  Status
	Message string
	// Replayed is true when the outcome was read back from an earlier payment
	// with the same idempotency key.
	Replayed bool
}

// View is the redacted, safe-to-expose shape of a stored payment.
type View struct {
	ID               string
	MaskedCardNumber string
	ExpiryMonth      string
	ExpiryYear       string
	Amount           decimal.Decimal
	Currency         string
	Status           Status
}

// Event is emitted after a new payment has been persisted.
type Event struct {
	PaymentID      string          `json:"payment_id"`
	Status         Status          `json:"status"`
	IdempotencyKey string          `json:"idempotency_key"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
