package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

// DefaultMetricsNamespace is used when no namespace is configured.
const DefaultMetricsNamespace = "PaymentGateway"

// Metric names emitted per processed payment.
const (
	MetricPaymentsProcessed = "PaymentsProcessed"
	MetricPaymentAmount     = "PaymentAmount"
)

// Metrics pushes payment counters to CloudWatch.
type Metrics struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

// NewMetrics returns a Metrics writer for namespace.
func NewMetrics(client CloudWatchAPI, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultMetricsNamespace
	}
	return &Metrics{CloudWatch: client, Namespace: namespace, nowFunc: time.Now}
}

// RecordPayment emits a count by status and the amount by status and currency.
func (m *Metrics) RecordPayment(ctx context.Context, ev payments.Event) error {
	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = m.nowFunc()
	}
	status := string(ev.Status)

	data := []cwtypes.MetricDatum{
		{
			MetricName: awsString(MetricPaymentsProcessed),
			Dimensions: []cwtypes.Dimension{
				{Name: awsString("Status"), Value: awsString(status)},
			},
			Timestamp: &ts,
			Unit:      cwtypes.StandardUnitCount,
			Value:     awsFloat(1),
		},
		{
			MetricName: awsString(MetricPaymentAmount),
			Dimensions: []cwtypes.Dimension{
				{Name: awsString("Status"), Value: awsString(status)},
				{Name: awsString("Currency"), Value: awsString(ev.Currency)},
			},
			Timestamp: &ts,
			Unit:      cwtypes.StandardUnitNone,
			Value:     awsFloat(ev.Amount.InexactFloat64()),
		},
	}

	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  awsString(m.Namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func awsFloat(f float64) *float64 { return &f }
