package payments

// StatusFromDecision maps an authorization decision to a payment status.
func StatusFromDecision(approved bool) Status {
	if approved {
		return StatusSuccess
	}
	return StatusFailure
}

// NewPayment builds the record to persist for req. ID and CreatedAt are left
// for the Ledger.
func NewPayment(req Request, approved bool) Payment {
	return Payment{
		CardNumber:     req.CardNumber,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         StatusFromDecision(approved),
		IdempotencyKey: req.IdempotencyKey,
	}
}

// FreshOutcome is the outcome of a payment processed by this call.
func FreshOutcome(p Payment) Outcome {
	msg := MessageFailure
	if p.Status == StatusSuccess {
		msg = MessageSuccess
	}
	return Outcome{ID: p.ID, Status: p.Status, Message: msg}
}

// ReplayOutcome is the outcome returned for a payment found by idempotency key.
// Its Message is empty.
func ReplayOutcome(p Payment) Outcome {
	return Outcome{ID: p.ID, Status: p.Status, Replayed: true}
}

func eventFor(p Payment) Event {
	return Event{
		PaymentID:      p.ID,
		Status:         p.Status,
		IdempotencyKey: p.IdempotencyKey,
		Amount:         p.Amount,
		Currency:       p.Currency,
		OccurredAt:     p.CreatedAt,
	}
}
