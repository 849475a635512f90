package idempotency

import "time"

// Record maps an idempotency key to the payment created for it. It is
// written in the same transaction as the payment and never updated.
type Record struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	PaymentID      string    `dynamodbav:"payment_id"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
}
