package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

// MetricsRecorder is satisfied by *aws.Metrics.
type MetricsRecorder interface {
	RecordPayment(ctx context.Context, ev payments.Event) error
}

// Processor turns PaymentProcessed events into metrics.
type Processor struct {
	metrics MetricsRecorder
}

// NewProcessor creates a new worker processor.
func NewProcessor(metrics MetricsRecorder) *Processor {
	return &Processor{metrics: metrics}
}

// Handle processes a batch and reports the messages that failed so only
// those are redelivered.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	log.Printf("[worker] received messages=%d", len(ev.Records))
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Printf("[worker] message failed message_id=%s err=%v", rec.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	ev, err := decodeEvent(rec.Body)
	if err != nil {
		return err
	}
	log.Printf("[worker] recording payment_id=%s status=%s currency=%s", ev.PaymentID, ev.Status, ev.Currency)
	return p.metrics.RecordPayment(ctx, ev)
}
