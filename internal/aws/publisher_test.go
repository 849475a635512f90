package aws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-idempotent-payments/internal/aws/awstest"
	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

var (
	_ SQSAPI        = (*awstest.SQS)(nil)
	_ CloudWatchAPI = (*awstest.CloudWatch)(nil)
	_ DynamoDBAPI   = (*awstest.DynamoDB)(nil)
)

func testEvent() payments.Event {
	return payments.Event{
		PaymentID:      "pay-1",
		Status:         payments.StatusSuccess,
		IdempotencyKey: "key-1",
		Amount:         decimal.RequireFromString("100.50"),
		Currency:       "USD",
		OccurredAt:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPublishPaymentProcessed(t *testing.T) {
	fake := &awstest.SQS{}
	p := NewPublisher(fake, "https://sqs.local/000000000000/payment-events")

	if err := p.PublishPaymentProcessed(context.Background(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	sent := fake.Messages()
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
	msg := sent[0]
	if *msg.QueueUrl != "https://sqs.local/000000000000/payment-events" {
		t.Fatalf("queue url mismatch: %s", *msg.QueueUrl)
	}

	var got payments.Event
	if err := json.Unmarshal([]byte(*msg.MessageBody), &got); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if got.PaymentID != "pay-1" || got.Status != payments.StatusSuccess || !got.Amount.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("unexpected event: %+v", got)
	}

	for _, name := range []string{"payment_id", "status", "idempotency_key"} {
		attr, ok := msg.MessageAttributes[name]
		if !ok {
			t.Fatalf("missing attribute %s", name)
		}
		if *attr.DataType != "String" {
			t.Fatalf("attribute %s: expected String, got %s", name, *attr.DataType)
		}
	}
	if *msg.MessageAttributes["status"].StringValue != "SUCCESS" {
		t.Fatalf("status attribute mismatch")
	}
}

func TestPublishPaymentProcessed_NoCardData(t *testing.T) {
	fake := &awstest.SQS{}
	p := NewPublisher(fake, "q")
	if err := p.PublishPaymentProcessed(context.Background(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	body := *fake.Messages()[0].MessageBody
	if strings.Contains(strings.ToLower(body), "card") {
		t.Fatalf("event body must not carry card data: %s", body)
	}
}

func TestSendMessage_SkipsEmptyAttributes(t *testing.T) {
	fake := &awstest.SQS{}
	p := NewPublisher(fake, "q")
	err := p.SendMessage(context.Background(), "{}", map[string]string{"a": "1", "b": ""})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	attrs := fake.Messages()[0].MessageAttributes
	if _, ok := attrs["b"]; ok {
		t.Fatalf("empty attribute should be dropped")
	}
	if *attrs["a"].StringValue != "1" {
		t.Fatalf("attribute a mismatch")
	}
}

func TestSendMessage_Error(t *testing.T) {
	fake := &awstest.SQS{Err: errors.New("throttled")}
	p := NewPublisher(fake, "q")
	err := p.PublishPaymentProcessed(context.Background(), testEvent())
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}
