package payments

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewPayment_CopiesRequestWithoutCVV(t *testing.T) {
	req := Request{
		CardNumber:     "4111111111111112",
		ExpiryMonth:    "01",
		ExpiryYear:     "2031",
		CVV:            "999",
		Amount:         decimal.RequireFromString("10.25"),
		Currency:       "EUR",
		IdempotencyKey: "key-1",
	}

	approved := NewPayment(req, true)
	if approved.Status != StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", approved.Status)
	}
	if approved.ID != "" {
		t.Fatalf("ID must be left for the ledger, got %q", approved.ID)
	}
	if approved.CardNumber != req.CardNumber || approved.IdempotencyKey != req.IdempotencyKey || !approved.Amount.Equal(req.Amount) {
		t.Fatalf("fields not copied: %+v", approved)
	}

	declined := NewPayment(req, false)
	if declined.Status != StatusFailure {
		t.Fatalf("expected FAILURE, got %s", declined.Status)
	}
}

func TestFreshAndReplayOutcome(t *testing.T) {
	ok := Payment{ID: "1", Status: StatusSuccess}
	bad := Payment{ID: "2", Status: StatusFailure}

	if o := FreshOutcome(ok); o.Message != MessageSuccess || o.Replayed {
		t.Fatalf("unexpected fresh success outcome %+v", o)
	}
	if o := FreshOutcome(bad); o.Message != MessageFailure || o.Status != StatusFailure {
		t.Fatalf("unexpected fresh failure outcome %+v", o)
	}

	replay := ReplayOutcome(ok)
	if replay.Message != "" {
		t.Fatalf("replayed outcome must not carry a message, got %q", replay.Message)
	}
	if !replay.Replayed || replay.ID != "1" || replay.Status != StatusSuccess {
		t.Fatalf("unexpected replay outcome %+v", replay)
	}
}
