package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

var errIncompleteEvent = errors.New("event is missing payment_id or status")

// decodeEvent parses the body the API publishes after persisting a payment.
func decodeEvent(body string) (payments.Event, error) {
	var ev payments.Event
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		return payments.Event{}, fmt.Errorf("invalid message body: %w", err)
	}
	if ev.PaymentID == "" || ev.Status == "" {
		return payments.Event{}, errIncompleteEvent
	}
	return ev, nil
}
