package awstest

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

// CloudWatch records every PutMetricData input.
type CloudWatch struct {
	mu   sync.Mutex
	Puts []*cloudwatch.PutMetricDataInput
	Err  error
}

func (c *CloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.Puts = append(c.Puts, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}
